package meta

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	CmdLogin     = "login"
	CmdWhoami    = "whoami"
	CmdLogout    = "logout"
	CmdRegister  = "register"
	CmdUpload    = "upload"
	CmdTypes     = "types"
	CmdLs        = "ls"
	CmdShow      = "show"
	CmdComment   = "comment"
	CmdAdd       = "add"
	CmdLike      = "like"
	CmdDislike   = "dislike"
	CmdRm        = "rm"
	CmdMedia     = "media"
	CmdGet       = "get"
	CmdBus       = "bus"
	CmdCountries = "countries"
)

const (
	DefaultDomain       = "https://casos-paranormales.supabase.co"
	DefaultCountriesURL = "https://restcountries.com/v3.1"
)

const (
	LoadError   = 1
	ServerError = 2
	HttpError   = 3
)

// 后端实现
const (
	BackendRest  = "rest"
	BackendLocal = "local"
)

// 存储实现
const (
	StorageDriverPlatform = "platform"
	StorageDriverOSS      = "oss"
)

var Backends = []string{BackendRest, BackendLocal}

var StorageDrivers = []string{StorageDriverPlatform, StorageDriverOSS}

var BackendsStr = "'" + strings.Join(Backends, "','") + "'"

var StorageDriversStr = "'" + strings.Join(StorageDrivers, "','") + "'"

// 数据表
const (
	TableUser     = "User"
	TableCase     = "Case"
	TableCaseType = "Case_Type"
	TableLocation = "Location"
	TableFiles    = "Files"
	TableComments = "Comment"
)

const (
	DefaultBucket       = "multimedia"
	DefaultPageSize     = 6
	FeaturedLimit       = 5
	DescriptionMinChars = 50
	UsernameMinChars    = 3
	PasswordMinChars    = 6
	CommentMaxChars     = 500
	MaxVideos           = 1
	MaxAudios           = 2
	BcryptCost          = 10
	UploadConcurrency   = 3
	DefaultBusPort      = 4333
)

const (
	DefaultLocationLookupTimeout = 5 * time.Second
	DefaultModerationTimeout     = 30 * time.Second
	DefaultSignedURLTTL          = time.Hour
	DefaultCountriesTTL          = 24 * time.Hour
	DefaultCountriesTimeout      = 10 * time.Second
)

// 排序
const (
	SortByTimeHour = "timeHour"
	SortByCaseName = "caseName"
	SortOrderDesc  = "desc"
	SortOrderAsc   = "asc"
)

var SortFields = []string{SortByTimeHour, SortByCaseName}

var SortFieldsStr = func(arr []string) string {
	strs := lo.Map(arr, func(v string, _ int) string {
		return v
	})
	return "'" + strings.Join(strs, "','") + "'"
}(SortFields)

// 审核策略
const (
	ModerationAggregateThreshold = 0.5
	ModerationTopThreshold       = 0.4
)

var UnsafeCategories = []string{"Porn", "Hentai", "Sexy"}

// 允许的媒体类型
var (
	ImageMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	VideoMimeTypes = []string{"video/mp4", "video/webm", "video/quicktime"}
	AudioMimeTypes = []string{"audio/mpeg", "audio/wav", "audio/m4a", "audio/aac"}
)

const (
	PercentEncode       = "%2F"
	HTTPGet             = "GET"
	HTTPPost            = "POST"
	HTTPPatch           = "PATCH"
	HTTPDelete          = "DELETE"
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "apikey"
	HeaderContentType   = "Content-Type"
	HeaderPrefer        = "Prefer"
	HeaderContentRange  = "Content-Range"
	HeaderUpsert        = "x-upsert"
	HeaderCasosVersion  = "X-Casos-CLI-Version"
	JsonContentType     = "application/json"
	RestPrefix          = "rest/v1"
	StoragePrefix       = "storage/v1"
	CasosFolder         = ".casos"
	SessionFileName     = "session.json"
	LocalDBFileName     = "casos.db"
	CountriesFileName   = "countries.json"
	LocalBlobFolder     = "blobs"
	ConfigFileName      = "config"
	ProjectConfigFile   = ".casos.yaml"
	OSWindows           = "windows"
	EnvUserProfile      = "USERPROFILE"
	EnvHome             = "HOME"
	EnvPrefix           = "CASOS"
	EnvAPIKey           = "CASOS_API_KEY"
	OSSObjectKey        = "https://%s.oss-%s.aliyuncs.com/%s"
	SessionSubject      = "casos.session.changed"
)

// 面向用户的提示文本
const (
	MsgSelectCaseType      = "Selecciona un tipo de caso"
	MsgEnterCaseName       = "Ingresa un nombre para el caso"
	MsgEnterCountry        = "Ingresa el país"
	MsgEnterAddress        = "Ingresa la dirección"
	MsgDescriptionRequired = "La descripción es requerida"
	MsgDescriptionMin      = "Mínimo %d caracteres (%d/%d)"
	MsgEmailRequired       = "El correo es requerido"
	MsgEmailInvalid        = "El correo no es válido"
	MsgUsernameRequired    = "El nombre de usuario es requerido"
	MsgUsernameMin         = "El nombre de usuario debe tener al menos 3 caracteres"
	MsgPasswordRequired    = "La contraseña es requerida"
	MsgPasswordMin         = "La contraseña debe tener al menos 6 caracteres"
	MsgPasswordMismatch    = "Las contraseñas no coinciden"
	MsgFirstNameRequired   = "El nombre es requerido"
	MsgLastNameRequired    = "El apellido es requerido"
	MsgBirthdayRequired    = "La fecha de nacimiento es requerida"
	MsgFilesRequired       = "Debes seleccionar al menos 1 archivo (imagen, video o audio)"
	MsgMaxVideos           = "Máximo 1 video permitido"
	MsgMaxAudios           = "Máximo 2 audios permitidos"
	MsgFileTypeNotAllowed  = "%s: Tipo de archivo no permitido"
	MsgSubmitFailed        = "Error al subir el caso. Intenta de nuevo."
	MsgInvalidCredentials  = "Usuario o contraseña incorrectos"
	MsgUsernameTaken       = "El nombre de usuario ya está en uso"
	MsgUserNotFound        = "Usuario no encontrado"
	MsgCommentEmpty        = "El comentario no puede estar vacío"
	MsgCommentTooLong      = "Máximo 500 caracteres (%d/500)"
	MsgConfirmDelete       = "¿Estás seguro de que quieres eliminar este comentario?"
	MsgMediaUnavailable    = "Archivo no disponible"
	MsgImageRejected       = "%s: La imagen contiene contenido inapropiado"
	MsgAnalyzing           = "Analizando…"
	MsgModerationPending   = "Espera a que termine el análisis de las imágenes"
	MsgSubmitting          = "Subiendo el caso…"
)

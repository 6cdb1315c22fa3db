package meta

// ErrNo 服务端返回的已知错误
type ErrNo struct {
	Code    string
	Message string
}

func (e ErrNo) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func NewErrNo(message string) ErrNo {
	return ErrNo{Message: message}
}

// PostgREST / Postgres 错误码
const (
	CodeNoRows          = "PGRST116"
	CodeUniqueViolation = "23505"
	CodeForeignKey      = "23503"
	CodeJWTExpired      = "PGRST301"
)

var ServerErrors = map[string]ErrNo{
	CodeNoRows:          {Code: CodeNoRows, Message: "registro no encontrado"},
	CodeUniqueViolation: {Code: CodeUniqueViolation, Message: "el registro ya existe"},
	CodeForeignKey:      {Code: CodeForeignKey, Message: "referencia inválida"},
	CodeJWTExpired:      {Code: CodeJWTExpired, Message: "la sesión con la plataforma expiró"},
}

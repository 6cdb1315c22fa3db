package cmd

import (
	"fmt"

	tuiPkg "github.com/casos-paranormales/casos-cli/cmd/tui"
	"github.com/casos-paranormales/casos-cli/config"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/urfave/cli/v2"
)

var globalArgs = config.NewArgument()

func Init() *cli.App {
	// flags
	verboseFlag := cli.BoolFlag{Name: "verbose,vv", Usage: "turn on verbose mode", Destination: &globalArgs.Verbose}
	baseDomainFlag := cli.StringFlag{Name: "base_domain", Usage: "Specify the platform domain.", Destination: &globalArgs.BaseDomain}
	apiKeyFlag := cli.StringFlag{Name: "api_key", Aliases: []string{"k"}, Usage: "Specify the platform api key.", EnvVars: []string{meta.EnvAPIKey}, Destination: &globalArgs.ApiKey}
	backendFlag := cli.StringFlag{Name: "backend", Usage: fmt.Sprintf("Data backend. (Only works for %s)", meta.BackendsStr), Destination: &globalArgs.Backend}
	configFlag := cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Read settings only from this YAML file.", Destination: &globalArgs.ConfigPath}

	// upload
	fileFlag := cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Submit cases from a YAML file", Destination: &globalArgs.FilePath}
	typeFlag := cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Case type id or name.", Destination: &globalArgs.CaseType}
	nameFlag := cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Case name.", Destination: &globalArgs.CaseName}
	countryFlag := cli.StringFlag{Name: "country", Usage: "Country where it happened.", Destination: &globalArgs.Country}
	regionFlag := cli.StringFlag{Name: "region", Usage: "Region or state.", Destination: &globalArgs.Region}
	addressFlag := cli.StringFlag{Name: "address", Usage: "Address or place.", Destination: &globalArgs.Address}
	descriptionFlag := cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: fmt.Sprintf("Case description, at least %d characters.", meta.DescriptionMinChars), Destination: &globalArgs.Description}
	pathFlag := cli.StringSliceFlag{Name: "path", Aliases: []string{"p"}, Usage: "Media file to attach, repeat for several files.", Destination: &cli.StringSlice{}}

	// ls
	pageFlag := cli.IntFlag{Name: "page", Usage: "Page number.", Value: 1, Destination: &globalArgs.Page}
	limitFlag := cli.IntFlag{Name: "limit", Usage: "Cases per page.", Destination: &globalArgs.Limit}
	searchFlag := cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Search in case name and description.", Destination: &globalArgs.Search}
	sortFlag := cli.StringFlag{Name: "sort", Usage: fmt.Sprintf("Sort field. (Only works for %s)", meta.SortFieldsStr), Destination: &globalArgs.Sort}
	orderFlag := cli.StringFlag{Name: "order", Usage: "Sort order: asc or desc.", Destination: &globalArgs.Order}
	mineFlag := cli.BoolFlag{Name: "mine", Usage: "Only my cases.", Destination: &globalArgs.Mine}
	featuredFlag := cli.BoolFlag{Name: "featured", Usage: fmt.Sprintf("The %d latest cases.", meta.FeaturedLimit), Destination: &globalArgs.Featured}

	// show / media / comment
	openFlag := cli.BoolFlag{Name: "open", Aliases: []string{"o"}, Usage: "Open the media in the browser.", Destination: &globalArgs.Open}
	dirFlag := cli.StringFlag{Name: "dir", Usage: "Download directory.", Value: ".", Destination: &globalArgs.Dir}
	textFlag := cli.StringFlag{Name: "text", Usage: "Comment text.", Destination: &globalArgs.Text}
	yesFlag := cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt.", Destination: &globalArgs.Yes}

	// register / login
	usernameFlag := cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username.", Destination: &globalArgs.Username}
	passwordFlag := cli.StringFlag{Name: "password", Usage: "Password, prompted when omitted.", EnvVars: []string{meta.EnvPrefix + "_PASSWORD"}, Destination: &globalArgs.Password}
	emailFlag := cli.StringFlag{Name: "email", Usage: "Email.", Destination: &globalArgs.Email}
	firstNameFlag := cli.StringFlag{Name: "first_name", Usage: "First name.", Destination: &globalArgs.FirstName}
	lastNameFlag := cli.StringFlag{Name: "last_name", Usage: "Last name.", Destination: &globalArgs.LastName}
	birthdayFlag := cli.StringFlag{Name: "birthday", Usage: "Birthday (YYYY-MM-DD).", Destination: &globalArgs.Birthday}

	// bus
	hostFlag := cli.StringFlag{Name: "host", Usage: "Bus listen host.", Value: "127.0.0.1", Destination: &globalArgs.Host}
	portFlag := cli.IntFlag{Name: "port", Usage: fmt.Sprintf("Bus listen port, default: %d", meta.DefaultBusPort), Value: meta.DefaultBusPort, Destination: &globalArgs.Port}

	app := cli.NewApp()
	app.Name = meta.Name
	app.Usage = meta.Description
	app.Version = meta.Version
	cli.VersionPrinter = func(cCtx *cli.Context) {
		fmt.Printf("Version: %s\nRevision: %s\nBuild At: %s\n", cCtx.App.Version, meta.Commit, meta.BuildDate)
	}

	// global flags
	app.Flags = []cli.Flag{
		&verboseFlag,
		&baseDomainFlag,
		&apiKeyFlag,
		&backendFlag,
		&configFlag,
	}

	// 默认无参进入主 TUI
	app.Action = MainTUI

	// Commands
	app.Commands = []*cli.Command{
		{
			Name:  meta.CmdLogin,
			Usage: "Iniciar sesión",
			Flags: []cli.Flag{
				&usernameFlag,
				&passwordFlag,
			},
			Action: Login,
		},
		{
			Name:  meta.CmdRegister,
			Usage: "Crear una cuenta",
			Flags: []cli.Flag{
				&usernameFlag,
				&passwordFlag,
				&emailFlag,
				&firstNameFlag,
				&lastNameFlag,
				&birthdayFlag,
			},
			Action: Register,
		},
		{
			Name:   meta.CmdLogout,
			Usage:  "Cerrar sesión",
			Action: Logout,
		},
		{
			Name:   meta.CmdWhoami,
			Usage:  "Mostrar el usuario actual",
			Action: Whoami,
		},
		{
			Name:   meta.CmdTypes,
			Usage:  "Listar los tipos de caso",
			Action: ListTypes,
		},
		{
			Name:      meta.CmdCountries,
			Usage:     "Listar los países disponibles para el lugar del caso",
			ArgsUsage: "[búsqueda]",
			Flags:     []cli.Flag{&searchFlag},
			Action:    ListCountries,
		},
		{
			Name:  meta.CmdLs,
			Usage: "Listar casos",
			Flags: []cli.Flag{
				&pageFlag,
				&limitFlag,
				&searchFlag,
				&typeFlag,
				&sortFlag,
				&orderFlag,
				&mineFlag,
				&featuredFlag,
			},
			Action: ListCases,
		},
		{
			Name:      meta.CmdShow,
			Usage:     "Ver el detalle de un caso",
			ArgsUsage: "<case-id>",
			Flags: []cli.Flag{
				&openFlag,
			},
			Action: ShowCase,
		},
		{
			Name:  meta.CmdUpload,
			Usage: "Reportar un caso nuevo",
			Flags: []cli.Flag{
				&fileFlag,
				&typeFlag,
				&nameFlag,
				&countryFlag,
				&regionFlag,
				&addressFlag,
				&descriptionFlag,
				&pathFlag,
			},
			Action: Upload,
		},
		{
			Name:  meta.CmdComment,
			Usage: "{ls, add, like, dislike, rm} comentarios de un caso",
			Subcommands: []*cli.Command{
				{
					Name:      meta.CmdLs,
					Usage:     "Listar comentarios",
					ArgsUsage: "<case-id>",
					Action:    ListComments,
				},
				{
					Name:      meta.CmdAdd,
					Usage:     "Agregar un comentario",
					ArgsUsage: "<case-id> [texto...]",
					Flags: []cli.Flag{
						&textFlag,
					},
					Action: AddComment,
				},
				{
					Name:      meta.CmdLike,
					Usage:     "Me gusta",
					ArgsUsage: "<case-id> <comment-id>",
					Action:    LikeComment,
				},
				{
					Name:      meta.CmdDislike,
					Usage:     "No me gusta",
					ArgsUsage: "<case-id> <comment-id>",
					Action:    DislikeComment,
				},
				{
					Name:      meta.CmdRm,
					Usage:     "Eliminar tu comentario",
					ArgsUsage: "<case-id> <comment-id>",
					Flags: []cli.Flag{
						&yesFlag,
					},
					Action: RemoveComment,
				},
			},
		},
		{
			Name:  meta.CmdMedia,
			Usage: "{get} archivos multimedia de un caso",
			Subcommands: []*cli.Command{
				{
					Name:      meta.CmdGet,
					Usage:     "Descargar los archivos de un caso",
					ArgsUsage: "<case-id>",
					Flags: []cli.Flag{
						&dirFlag,
					},
					Action: GetMedia,
				},
			},
		},
		{
			Name:  meta.CmdBus,
			Usage: "Ejecutar el bus de sesiones entre terminales",
			Flags: []cli.Flag{
				&hostFlag,
				&portFlag,
			},
			Action: RunBus,
		},
	}

	return app
}

// MainTUI 无子命令时进入交互界面
func MainTUI(c *cli.Context) error {
	args, err := globalArgs.Parse(c, "")
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)
	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()
	return tuiPkg.Run(c.Context, env)
}

func setLogVerbose(verbose bool) {
	if verbose {
		logs.SetLevel(logs.LevelDebug)
	} else {
		logs.SetLevel(logs.LevelWarn)
	}
}

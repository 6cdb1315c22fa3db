package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/casos-paranormales/casos-cli/lib/location"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/urfave/cli/v2"
)

func ListCountries(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdCountries)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)

	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()

	countries, fallback := env.Countries.Countries(c.Context)
	countries = location.Search(countries, args.Search)
	if fallback {
		fmt.Fprintln(os.Stderr, "Sin conexión con el catálogo de países, se muestra la lista básica.")
	}
	if len(countries) == 0 {
		fmt.Fprintf(os.Stdout, "Ningún país coincide con %q\n", args.Search)
		return nil
	}
	return writeCountries(os.Stdout, countries)
}

func writeCountries(out io.Writer, countries []location.Country) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PAÍS\tCÓDIGO\tREGIÓN\tCAPITAL\t")
	for _, country := range countries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", country.Name, country.Code, orDash(country.Region), orDash(country.Capital))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/flightdelay/internal/server"
)

var domainsJSON bool

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List the airport and airline filter options",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("domains"); err != nil {
			return err
		}

		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		d := server.Domains(ds)

		out := cmd.OutOrStdout()
		if domainsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(d), "encode domains")
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "FILTER\tKEY\tLABEL")
		_, _ = fmt.Fprintln(w, "------\t---\t-----")
		for _, o := range d.Airports {
			_, _ = fmt.Fprintf(w, "airport\t%s\t%s\n", o.Key, o.Label)
		}
		for _, o := range d.Airlines {
			_, _ = fmt.Fprintf(w, "airline\t%s\t%s\n", o.Key, o.Label)
		}
		return w.Flush()
	},
}

func init() {
	domainsCmd.Flags().BoolVar(&domainsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(domainsCmd)
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/incubation-console/internal/export"
	"github.com/frahmantamala/incubation-console/internal/guard"
	"github.com/frahmantamala/incubation-console/internal/shell"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the role/screen matrix",
	Long:  `Print every console screen with the roles allowed to open it, and any redirect rule that contradicts the matrix`,
	Run: func(cmd *cobra.Command, args []string) {
		printRoutes(guard.DefaultMatrix())
	},
}

func printRoutes(m *guard.Matrix) {
	t := export.Table{Headers: []string{"PATH", "TITLE", "ROLES"}}
	for _, s := range m.Screens() {
		roles := "public"
		if !s.Public() {
			names := make([]string, len(s.Roles))
			for i, r := range s.Roles {
				names[i] = fmt.Sprintf("%d %s", int(r), r)
			}
			roles = strings.Join(names, ", ")
		}
		t.Rows = append(t.Rows, []string{s.Path, s.Title, roles})
	}

	var footer []string
	for _, msg := range m.Inconsistencies() {
		footer = append(footer, "inconsistent: "+msg)
	}
	shell.TableResult{Table: t, Footer: footer}.Print(os.Stdout)
}

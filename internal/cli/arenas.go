package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/rest"
)

func newArenasCmd() *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "arenas",
		Short: "List arenas available on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log := newLogger(cfg)

			client := rest.NewClient(cfg.Server.APIURL, log)
			client.SetToken(cfg.Auth.Token)

			var (
				arenas []domain.Arena
				err    error
			)
			if mine {
				if userID == "" {
					return fmt.Errorf("--mine requires --user or QBR_USER_ID")
				}
				arenas, err = client.ListArenasByCreator(cmd.Context(), userID)
			} else {
				arenas, err = client.ListArenas(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tQUESTIONS\tCREATOR")
			for _, a := range arenas {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.ID, a.Title, a.QuestionCount, a.CreatorID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "only arenas created by --user")
	return cmd
}

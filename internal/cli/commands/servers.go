package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leaptds/internal/config"
	"github.com/spf13/cobra"
)

// serverInfo is the printable part of a server definition. Credentials
// other than the user name are never shown.
type serverInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Instance string `json:"instance,omitempty"`
	Database string `json:"database,omitempty"`
	User     string `json:"user,omitempty"`
	Default  bool   `json:"default"`
}

// NewServersCommand creates the servers command.
func NewServersCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "servers",
		Aliases: []string{"ls"},
		Short:   "List configured servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			return listServers(cmd.OutOrStdout(), cfg, cfg.Output)
		},
	}
}

func listServers(w io.Writer, cfg *config.Config, format string) error {
	names := make([]string, 0, len(cfg.Servers))
	for name := range cfg.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]serverInfo, 0, len(names))
	for _, name := range names {
		s := cfg.Servers[name]
		infos = append(infos, serverInfo{
			Name:     name,
			Type:     s.Type,
			Host:     s.Host,
			Port:     s.Port,
			Instance: s.Instance,
			Database: s.Database,
			User:     s.User,
			Default:  name == cfg.DefaultServer,
		})
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		_, _ = fmt.Fprintln(w, "No servers configured")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Name", "Type", "Address", "Database", "User"})
	for _, s := range infos {
		marker := ""
		if s.Default {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, s.Name, s.Type, s.address(), s.Database, s.User})
	}
	t.Render()
	return nil
}

func (s serverInfo) address() string {
	host := s.Host
	if host == "" {
		host = "localhost"
	}
	if s.Instance != "" {
		return host + `\` + s.Instance
	}
	if s.Port != 0 {
		return host + ":" + strconv.Itoa(s.Port)
	}
	return host
}

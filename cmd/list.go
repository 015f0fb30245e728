// This file is part of automated-backup
//
// Copyright (C) 2026  Automated Backup Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bizflycloud/bizflyctl/formatter"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/SohamA2002/Automated-Backup/pkg/rotation"
)

var listArchivesHeaders = []string{"Name", "Created At", "Size"}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all archives known to the running agent.",
	Run: func(cmd *cobra.Command, args []string) {
		httpc := http.Client{
			Transport: &http.Transport{
				DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
					return net.Dial("unix", strings.TrimPrefix(addr, "unix://"))
				},
			},
		}
		resp, err := httpc.Get("http://unix/archives")
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer resp.Body.Close()
		var records []rotation.Record
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		data := make([][]string, 0, len(records))
		for _, rec := range records {
			row := []string{
				filepath.Base(rec.Path),
				rec.CreatedAt.Format("2006-01-02 15:04:05"),
				humanize.Bytes(uint64(rec.Size)),
			}
			data = append(data, row)
		}
		formatter.Output(listArchivesHeaders, data)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusPidFile string
	statusBind    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the netkitd server.

This checks the PID file and, when the subnet manager's HTTP facade is
reachable, its /healthz endpoint for the count of active subnets.

Examples:
  # Check status (uses default settings)
  netkitd status

  # Check status against a non-default subnet manager bind address
  netkitd status --bind 127.0.0.1:3031`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/netkitd/netkitd.pid)")
	statusCmd.Flags().StringVar(&statusBind, "bind", "127.0.0.1:3031", "Subnet manager HTTP bind address to query for health")
}

type healthResponse struct {
	Status        string `json:"status"`
	ActiveSubnets int    `json:"active_subnets"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	running, pid := false, 0
	if pidData, err := os.ReadFile(pidPath); err == nil {
		if p, err := strconv.Atoi(strings.TrimSpace(string(pidData))); err == nil {
			if process, err := os.FindProcess(p); err == nil {
				if process.Signal(syscall.Signal(0)) == nil {
					running, pid = true, p
				}
			}
		}
	}

	if !running {
		fmt.Println("Status: stopped")
		return nil
	}

	fmt.Printf("Status: running (PID %d)\n", pid)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/healthz", statusBind))
	if err != nil {
		fmt.Println("Subnet manager: unreachable")
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		fmt.Println("Subnet manager: invalid health response")
		return nil
	}
	fmt.Printf("Subnet manager: %s (%d active subnets)\n", health.Status, health.ActiveSubnets)

	return nil
}

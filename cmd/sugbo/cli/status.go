package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check if the admin API server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	port := viper.GetInt("server.port")
	if port == 0 {
		port = 8080
	}
	host := viper.GetString("server.host")
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	healthAddr := fmt.Sprintf("http://%s:%d/healthz", host, port)
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(healthAddr)
	if err != nil {
		fmt.Printf("Server is not responding at %s\n", healthAddr)
		return nil
	}
	resp.Body.Close()

	fmt.Printf("Server is running\n")
	fmt.Printf("  Health: %s (%d)\n", healthAddr, resp.StatusCode)

	readyAddr := fmt.Sprintf("http://%s:%d/readyz", host, port)
	resp, err = client.Get(readyAddr)
	if err == nil {
		resp.Body.Close()
		fmt.Printf("  Ready:  %s (%d)\n", readyAddr, resp.StatusCode)
	}
	return nil
}

// moderdctl is a small CLI client for a running moderd server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"moderd/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var server string
	root := &cobra.Command{
		Use:           "moderdctl",
		Short:         "Client for the moderd classification API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server", envOr("MODERD_SERVER", "http://localhost:8000"), "Base URL of the moderd server")

	classifyCmd := &cobra.Command{
		Use:   "classify <text>...",
		Short: "Classify one or more texts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return postJSON(server+"/classify", types.ClassifyRequest{Text: args[0]})
			}
			reviews := make([]types.ClassifyRequest, len(args))
			for i, a := range args {
				reviews[i] = types.ClassifyRequest{Text: a}
			}
			return postJSON(server+"/classify/batch", reviews)
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(server + "/health")
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List configured detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(server + "/models")
		},
	}

	root.AddCommand(classifyCmd, healthCmd, modelsCmd)
	return root
}

var httpClient = &http.Client{Timeout: 60 * time.Second}

func postJSON(url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func getJSON(url string) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}
	fmt.Println(pretty.String())
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

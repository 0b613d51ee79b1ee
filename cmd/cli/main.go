package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/coopledger/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	timeout time.Duration
	tenant  string
	actor   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "coopledger-cli",
		Short:         "Co-op ledger CLI tool",
		Long:          `A command line interface for the co-op member ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.tenant, "tenant", os.Getenv("COOPLEDGER_TENANT"), "Tenant (co-op) id")
	rootCmd.PersistentFlags().StringVar(&opts.actor, "actor", os.Getenv("COOPLEDGER_ACTOR"), "Acting user id, required for writes")

	rootCmd.AddCommand(
		importCmd(opts),
		refundCmd(opts),
		availabilityCmd(opts),
		reconcileCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <contribution|loan|mortgage|property|refund> <file.csv>",
		Short: "Upload a CSV file for bulk import",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts, true)
			if err != nil {
				return err
			}

			body, contentType, err := multipartFile(args[1])
			if err != nil {
				return err
			}

			out, err := c.do(http.MethodPost, "/imports/"+url.PathEscape(args[0]), body, contentType)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func refundCmd(opts *options) *cobra.Command {
	var (
		member, source, amount, reason, notes, key string
		autoApprove                                bool
	)

	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Process a refund for a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts, true)
			if err != nil {
				return err
			}
			c.idempotencyKey = key

			payload, err := json.Marshal(map[string]any{
				"source":       source,
				"amount":       amount,
				"reason":       reason,
				"notes":        notes,
				"auto_approve": autoApprove,
			})
			if err != nil {
				return err
			}

			out, err := c.do(http.MethodPost, "/members/"+url.PathEscape(member)+"/refunds",
				bytes.NewReader(payload), "application/json")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&member, "member", "", "Member id")
	cmd.Flags().StringVar(&source, "source", "", "Refund source (wallet, equity_wallet, contribution, investment_return)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount as a decimal string")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded on the refund")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key for safe retries")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Mark the refund as auto approved")
	for _, name := range []string{"member", "source", "amount", "reason"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func availabilityCmd(opts *options) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "availability <member>",
		Short: "Show refundable amounts for a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts, false)
			if err != nil {
				return err
			}

			path := "/members/" + url.PathEscape(args[0]) + "/availability"
			if source != "" {
				path += "/" + url.PathEscape(source)
			}

			out, err := c.do(http.MethodGet, path, nil, "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Limit to one refund source")
	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Replay journals against recorded balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts, false)
			if err != nil {
				return err
			}

			path := "/reconciliation/report"
			if account != "" {
				path = "/accounts/" + url.PathEscape(account) + "/reconcile"
			}

			out, err := c.do(http.MethodGet, path, nil, "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Reconcile a single account")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
			if args[0] == "down" {
				return postgres.RunMigrationsDown(databaseURL, path, logger)
			}
			return postgres.RunMigrations(databaseURL, path, logger)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.Flags().StringVar(&path, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")
	return cmd
}

type apiClient struct {
	baseURL        string
	tenant         string
	actor          string
	idempotencyKey string
	http           *http.Client
}

func newClient(opts *options, write bool) (*apiClient, error) {
	if opts.tenant == "" {
		return nil, errors.New("--tenant is required")
	}
	if write && opts.actor == "" {
		return nil, errors.New("--actor is required for this command")
	}

	return &apiClient{
		baseURL: opts.baseURL,
		tenant:  opts.tenant,
		actor:   opts.actor,
		http:    &http.Client{Timeout: opts.timeout},
	}, nil
}

func (c *apiClient) do(method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+"/api/v1"+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Tenant-ID", c.tenant)
	if c.actor != "" {
		req.Header.Set("X-Actor-ID", c.actor)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return nil, fmt.Errorf("%s (%s, status %d): %s", apiErr.Error, apiErr.Code, resp.StatusCode, apiErr.Message)
			}
			return nil, fmt.Errorf("%s (%s, status %d)", apiErr.Error, apiErr.Code, resp.StatusCode)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	return data, nil
}

func multipartFile(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func printJSON(w io.Writer, data []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		_, err = w.Write(data)
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

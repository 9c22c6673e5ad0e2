// Command shopkart is a small terminal client for the ShopKart API.
//
// The API base URL comes from SHOPKART_API and the bearer token from
// SHOPKART_TOKEN; both may live in a .env file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopkart/shopkart-api/internal/client"
	"github.com/shopkart/shopkart-api/internal/credential"
	"github.com/shopkart/shopkart-api/internal/models"
	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:8080"

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		apiURL  string
		token   string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:          "shopkart",
		Short:        "Talk to a ShopKart API server",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&apiURL, "api", envOr("SHOPKART_API", defaultAPI), "API base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("SHOPKART_TOKEN"), "bearer token")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "per-command timeout")

	// run builds a client and a bounded context, then hands both to fn.
	run := func(fn func(ctx context.Context, c *client.Client, args []string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c := client.New(apiURL, nil)
			c.Token = token
			result, err := fn(ctx, c, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "check-password <password>",
			Short: "Show which password rules pass",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				report := credential.Check(args[0])
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				return report.Err()
			},
		},
		&cobra.Command{
			Use:   "signup <name> <email> <password>",
			Short: "Create an account and print its token",
			Args:  cobra.ExactArgs(3),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (any, error) {
				return c.Signup(ctx, args[0], args[1], args[2])
			}),
		},
		&cobra.Command{
			Use:   "login <email> <password>",
			Short: "Log in and print the token",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (any, error) {
				return c.Login(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "orders",
			Short: "List your orders",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *client.Client, _ []string) (any, error) {
				return c.MyOrders(ctx)
			}),
		},
		&cobra.Command{
			Use:   "order <id>",
			Short: "Show one order",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (any, error) {
				id, err := parseOrderID(args[0])
				if err != nil {
					return nil, err
				}
				return c.GetOrder(ctx, id)
			}),
		},
		newPayCmd(run),
		&cobra.Command{
			Use:   "cancel <id>",
			Short: "Delete an unpaid order",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (any, error) {
				id, err := parseOrderID(args[0])
				if err != nil {
					return nil, err
				}
				if err := c.DeleteOrder(ctx, id); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": id}, nil
			}),
		},
	)
	return root
}

type runner func(func(ctx context.Context, c *client.Client, args []string) (any, error)) func(*cobra.Command, []string) error

func newPayCmd(run runner) *cobra.Command {
	var result models.PaymentResult

	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Record a payment against an order",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseOrderID(args[0])
			if err != nil {
				return nil, err
			}
			if result.UpdateTime == "" {
				result.UpdateTime = time.Now().UTC().Format(time.RFC3339)
			}
			return c.PayOrder(ctx, id, result)
		}),
	}
	cmd.Flags().StringVar(&result.ID, "payment-id", "", "provider payment id")
	cmd.Flags().StringVar(&result.Status, "status", "COMPLETED", "provider payment status")
	cmd.Flags().StringVar(&result.EmailAddress, "email", "", "payer email")
	_ = cmd.MarkFlagRequired("payment-id")
	return cmd
}

func parseOrderID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package client provides test commands for the sheetform gRPC service
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/handlers/form/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
)

// ClientCmd is the root command for all client test commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Test client commands for the sheetform server",
	Long:  `Client commands allow you to drive a character sheet form by making real gRPC requests.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")

	ClientCmd.AddCommand(startCmd)
	ClientCmd.AddCommand(sendCmd)
	ClientCmd.AddCommand(getCmd)
	ClientCmd.AddCommand(cancelCmd)
	ClientCmd.AddCommand(rollCmd)
}

// createFormClient creates a form service client
func createFormClient() (*v1alpha1.FormServiceClient, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return v1alpha1.NewFormServiceClient(conn), cleanup, nil
}

// call sends one request and prints the response as indented JSON
func call(method string, fields map[string]any) error {
	client, cleanup, err := createFormClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Call(ctx, method, req)
	if err != nil {
		converted := errors.FromGRPCError(err)
		for _, v := range errors.GetViolations(converted) {
			fmt.Printf("  - %s\n", v)
		}
		return fmt.Errorf("%s failed: %w", method, converted)
	}

	return printResponse(resp)
}

func printResponse(resp *structpb.Struct) error {
	if reply := resp.GetFields()[v1alpha1.KeyReply].GetStructValue(); reply != nil {
		for _, msg := range resp.GetFields()[v1alpha1.KeyMessages].GetListValue().GetValues() {
			fmt.Println(msg.GetStringValue())
		}
		fmt.Printf("[%s] %s\n\n", reply.GetFields()["kind"].GetStringValue(), reply.GetFields()["text"].GetStringValue())
	}

	data, err := json.MarshalIndent(resp.AsMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aria-labs/aria-server/ariaservice"
)

func main() {
	root := &cobra.Command{
		Use:          "aria-server",
		Short:        "Local-first personal assistant backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ariaservice.Run()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(ariaservice.Version)
		},
	})

	// Local overrides from .env; absence is fine.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded configuration from .env")
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

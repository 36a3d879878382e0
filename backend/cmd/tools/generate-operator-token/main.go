package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/jwt"
)

func main() {
	var configFolder, subject string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.StringVar(&subject, "subject", "operator", "name recorded in the token and in the server logs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	if cfg.JwtKey() == "" {
		fmt.Fprintln(os.Stderr, "jwt_key is empty in private.yaml")
		os.Exit(1)
	}

	token, err := jwt.New(cfg.JwtKey(), cfg.OperatorTTL()).NewOperatorToken(subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate operator token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=================================================")
	fmt.Println("  Operator token")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Printf("Subject:    %s\n", subject)
	fmt.Printf("Valid for:  %s\n", cfg.OperatorTTL())
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Use it as:")
	fmt.Println("  Authorization: Bearer <token>")
	fmt.Println("=================================================")
}

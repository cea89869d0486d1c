package main

import (
	"fmt"
	"log"
	"net/url"

	"diswantin/configs"
)

func main() {
	cfg, err := configs.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("✅ Configuration Loaded Successfully")
	fmt.Println("==================================")
	fmt.Printf("Server:\n")
	fmt.Printf("  Host: %s\n", cfg.Server.Host)
	fmt.Printf("  Port: %d\n", cfg.Server.Port)
	fmt.Printf("  Address: %s\n", cfg.Server.Address())

	fmt.Printf("\nDatabase:\n")
	fmt.Printf("  URL: %s\n", maskURL(cfg.Database.URL))
	fmt.Printf("  Max Connections: %d\n", cfg.Database.MaxConnections)
	fmt.Printf("  Conn Max Lifetime: %v\n", cfg.Database.ConnMaxLifetime)
	fmt.Printf("  Conn Max Idle Time: %v\n", cfg.Database.ConnMaxIdleTime)
	fmt.Printf("  Auto Migrate: %t\n", cfg.Database.AutoMigrate)

	fmt.Printf("\nAuth:\n")
	fmt.Printf("  Session TTL: %v\n", cfg.Auth.SessionTTL)
	fmt.Printf("  Sweep Schedule: %s\n", cfg.Auth.SweepSchedule)

	fmt.Printf("\nLogging:\n")
	fmt.Printf("  Level: %s\n", cfg.Log.Level)
	fmt.Printf("  Format: %s\n", cfg.Log.Format)

	fmt.Println("\n==================================")
	fmt.Println("✅ All configurations are valid!")
}

func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.Redacted()
}

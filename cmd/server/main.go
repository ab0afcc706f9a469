// Haven - resort website and content admin
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/aethra/haven/internal/api"
	"github.com/aethra/haven/internal/auth"
	"github.com/aethra/haven/internal/config"
	"github.com/aethra/haven/internal/database"
	"github.com/aethra/haven/internal/engine"
	"github.com/aethra/haven/internal/mailer"
	"github.com/aethra/haven/internal/models"
	"github.com/aethra/haven/internal/shell"
	"github.com/aethra/haven/internal/site"
	"github.com/aethra/haven/internal/storage"
	"github.com/aethra/haven/internal/store"
)

var Version = "1.0.0"

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg := config.Load()
	if len(os.Args) > 1 {
		runCLI(cfg)
		return
	}
	startServer(cfg)
}

func startServer(cfg *config.Config) {
	fmt.Printf("Haven %s - Starting...\n", Version)
	gin.SetMode(cfg.Server.Mode)

	db := connectDB(cfg)
	defer database.Close(db)
	log.Println("Database connected")

	if err := database.RunMigrations(db, cfg.Site.SeedDemoContent); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	st := store.New(db)
	registry := engine.BuildRegistry(st)

	pages, err := site.NewRenderer()
	if err != nil {
		log.Fatalf("Templates failed to load: %v", err)
	}
	pub := site.New(st, cfg.Site)

	mail := mailer.New(cfg.Mail)
	if !mail.Configured() {
		log.Println("⚠️  Email delivery is not configured; forms will show the fallback contact details")
	}

	bucket, err := storage.NewLocalBucket(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatalf("Upload storage failed: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.Auth)
	limiter := auth.NewLoginLimiter(cfg.Auth)
	defer limiter.Stop()
	shells := shell.New(st)

	router := api.SetupRouter(cfg, api.Handlers{
		Base:     api.NewHandler(st, jwtService),
		Public:   api.NewPublicHandler(pub, pages, mail),
		Auth:     api.NewAuthHandler(st, jwtService, limiter, shells, cfg.Server.Mode == gin.ReleaseMode),
		Setup:    api.NewSetupHandler(st, pub, pages),
		Admin:    api.NewAdminHandler(registry),
		Panel:    api.NewPanelHandler(pub, pages, st, registry, shells),
		Calendar: api.NewCalendarHandler(st, shells),
		Uploads:  api.NewUploadHandler(storage.NewUploader(bucket, cfg.Storage)),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

func connectDB(cfg *config.Config) *gorm.DB {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

// CLI
func runCLI(cfg *config.Config) {
	switch os.Args[1] {
	case "serve":
		startServer(cfg)
	case "setup":
		runSetup(cfg)
	case "migrate":
		db := connectDB(cfg)
		defer database.Close(db)
		if err := database.RunMigrations(db, cfg.Site.SeedDemoContent); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations complete")
	case "admin":
		runAdminCmd(cfg)
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: haven <command>
Commands:
  setup                                        Interactive setup wizard
  serve                                        Start server
  migrate                                      Run migrations
  admin list                                   List admins
  admin create --email= --password= [--name=]  Create admin`)
}

func runAdminCmd(cfg *config.Config) {
	if len(os.Args) < 3 {
		printUsage()
		return
	}
	db := connectDB(cfg)
	defer database.Close(db)
	st := store.New(db)
	ctx := context.Background()

	switch os.Args[2] {
	case "list":
		res := st.ListAdmins(ctx)
		if !res.OK() {
			log.Fatalf("Failed: %v", res.Err)
		}
		for _, a := range res.Data {
			status := "active"
			if !a.IsActive {
				status = "disabled"
			}
			fmt.Printf("%s <%s> %s\n", a.FullName, a.Email, status)
		}
	case "create":
		email, password := getFlag("--email"), getFlag("--password")
		if email == "" || password == "" {
			printUsage()
			return
		}
		createAdmin(ctx, st, email, password, getFlag("--name"))
	default:
		printUsage()
	}
}

func createAdmin(ctx context.Context, st *store.Store, email, password, name string) {
	if len(password) < 8 {
		log.Fatal("Password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed: %v", err)
	}
	if name == "" {
		name = "Administrator"
	}
	res := st.CreateAdmin(ctx, models.Admin{Email: email, PasswordHash: hash, FullName: name, IsActive: true})
	if !res.OK() {
		log.Fatalf("Failed: %v", res.Err)
	}
	fmt.Printf("Admin created: %s\n", res.Data.Email)
}

func getFlag(name string) string {
	prefix := name + "="
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, prefix) {
			return arg[len(prefix):]
		}
	}
	return ""
}

// Interactive Setup
func runSetup(cfg *config.Config) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\n=== Haven Setup Wizard ===\n\n")

	fmt.Println("Database Configuration:")
	d := &cfg.Database
	d.Driver = prompt(reader, "  Driver (postgres|mysql)", d.Driver)
	d.Host = prompt(reader, "  DB Host", d.Host)
	d.Port = prompt(reader, "  DB Port", config.DefaultPort(d.Driver))
	d.User = prompt(reader, "  DB User", d.User)
	d.Password = prompt(reader, "  DB Password", "")
	d.Name = prompt(reader, "  DB Name", d.Name)
	d.URL = ""

	fmt.Println("\nConnecting to database...")
	db := connectDB(cfg)
	defer database.Close(db)
	fmt.Println("Connected!")

	seed := strings.HasPrefix(strings.ToLower(prompt(reader, "Load demo content? (y/n)", "n")), "y")
	fmt.Println("Running migrations...")
	if err := database.RunMigrations(db, seed); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migrations complete!")

	st := store.New(db)
	ctx := context.Background()
	if count := st.AdminCount(ctx); count.OK() && count.Data == 0 {
		fmt.Println("\nAdmin Account:")
		email := prompt(reader, "  Email", "")
		password := prompt(reader, "  Password", "")
		name := prompt(reader, "  Full Name", "Administrator")
		createAdmin(ctx, st, email, password, name)
	} else {
		fmt.Println("\nAn admin already exists; skipping account creation.")
	}

	fmt.Println("\nSite Configuration:")
	siteName := prompt(reader, "  Site name", cfg.Site.Name)
	port := prompt(reader, "  Port", cfg.Server.Port)

	fmt.Println("\n=== Setup Complete ===")
	fmt.Println("\nAdd these to your .env, systemd service or docker-compose:")
	fmt.Println("----------------------------------------")
	fmt.Printf("DB_DRIVER=%s\n", d.Driver)
	fmt.Printf("DB_HOST=%s\n", d.Host)
	fmt.Printf("DB_PORT=%s\n", d.Port)
	fmt.Printf("DB_USER=%s\n", d.User)
	fmt.Printf("DB_PASSWORD=%s\n", d.Password)
	fmt.Printf("DB_NAME=%s\n", d.Name)
	fmt.Printf("JWT_SECRET=%s\n", config.GenerateJWTSecret())
	fmt.Printf("SITE_NAME=%s\n", siteName)
	fmt.Printf("SERVER_PORT=%s\n", port)
	fmt.Println("MAIL_SERVICE_ID=")
	fmt.Println("MAIL_TEMPLATE_ID=")
	fmt.Println("MAIL_PUBLIC_KEY=")
	fmt.Println("----------------------------------------")
	fmt.Printf("\nStart server: haven serve\n")
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

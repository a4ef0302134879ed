// Command main loads a movie catalog and optional demo data into PANORAM.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"panoram/internal/bootstrap"
	"panoram/internal/config"
	"panoram/internal/repository"
	"panoram/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML movie catalog to import")
	numUsers := flag.Int("users", 0, "Number of demo users to create")
	friends := flag.Int("friends", 3, "Friends per demo user")
	ratings := flag.Int("ratings", 15, "Ratings per demo user")
	seedValue := flag.Int64("seed", 0, "Random seed (0 = time based)")
	fast := flag.Bool("fast", false, "Skip bcrypt for demo users (they cannot log in)")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Printf("Error closing connections: %v", err)
		}
	}()

	movieRepo := repository.NewMovieRepository(rt.DB)

	if *catalogPath != "" {
		movies, err := seed.LoadCatalogFile(*catalogPath)
		if err != nil {
			log.Fatalf("Catalog load failed: %v", err)
		}
		if !*dryRun {
			n, err := seed.ImportCatalog(ctx, movieRepo, movies, 0)
			if err != nil {
				log.Fatalf("Catalog import failed: %v", err)
			}
			log.Printf("Imported %d of %d movies", n, len(movies))
		} else {
			log.Printf("[dry-run] would import %d movies", len(movies))
		}
	}

	if *numUsers <= 0 {
		log.Println("Done.")
		return
	}

	catalog, err := movieRepo.TopRated(ctx, 0)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}

	factory, err := seed.NewFactory(
		repository.NewUserRepository(rt.DB),
		repository.NewInteractionRepository(rt.DB),
		seed.Options{
			Users:          *numUsers,
			FriendsPerUser: *friends,
			RatingsPerUser: *ratings,
			Seed:           *seedValue,
			SkipBcrypt:     *fast,
			DryRun:         *dryRun,
		},
	)
	if err != nil {
		log.Fatalf("Failed to create factory: %v", err)
	}

	report, err := factory.Populate(ctx, catalog)
	if err != nil {
		log.Fatalf("Demo data failed: %v", err)
	}
	log.Printf("Created %d users, %d friendships, %d interactions", report.Users, report.Friendships, report.Interactions)
	if !*fast {
		log.Printf("All demo users have the password: %s", seed.DemoPassword)
	}
}

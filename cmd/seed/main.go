package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/careacademy/academy-backend/internal/database"
	"github.com/careacademy/academy-backend/internal/logger"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/service"
)

type seedCourse struct {
	title    string
	summary  string
	body     string
	price    int64
	hours    int
	location string
}

var catalog = []struct {
	category    string
	description string
	courses     []seedCourse
}{
	{
		category:    "Certificate III in Individual Support",
		description: "Entry qualification for personal care workers in residential and home care.",
		courses: []seedCourse{
			{
				title:    "Individual Support (Ageing)",
				summary:  "The nationally recognised entry qualification for aged care workers.",
				body:     "## What you will learn\n\n- Person-centred care\n- Manual handling\n- Infection control\n\nIncludes **120 hours** of supervised work placement.",
				price:    245000,
				hours:    480,
				location: "Main Campus",
			},
			{
				title:    "Individual Support (Disability)",
				summary:  "Support people living with disability at home and in the community.",
				body:     "## Course outline\n\n1. Disability rights\n2. Communication strategies\n3. Behaviour support",
				price:    245000,
				hours:    480,
				location: "Main Campus",
			},
		},
	},
	{
		category:    "Short Courses",
		description: "Skill sets and refreshers for working carers.",
		courses: []seedCourse{
			{
				title:    "Dementia Care Essentials",
				summary:  "Practical strategies for supporting people living with dementia.",
				body:     "A two-day workshop covering *stages of dementia*, communication and responsive behaviours.",
				price:    39500,
				hours:    14,
				location: "Room 2B",
			},
			{
				title:    "First Aid and CPR",
				summary:  "HLTAID011 Provide First Aid, with CPR.",
				body:     "Delivered in a single day. Bring closed shoes.",
				price:    14900,
				hours:    8,
				location: "Training Room 1",
			},
			{
				title:    "Medication Assistance",
				summary:  "Assist clients with medication safely and within scope.",
				body:     "Covers *Webster packs*, documentation and incident reporting.",
				price:    29000,
				hours:    16,
				location: "Room 2B",
			},
		},
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	intakeRepo := repository.NewIntakeRepository(pool)
	catalogService := service.NewCatalogService(
		repository.NewCategoryRepository(pool),
		repository.NewCourseRepository(pool),
		intakeRepo,
		service.NewRedisCatalogCache(rdb, cfg.CatalogCacheTTL),
		log,
	)
	intakeService := service.NewIntakeService(intakeRepo, catalogService)

	_, pagination, err := catalogService.ListCategories(ctx, url.Values{"per_page": {"1"}})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to inspect catalog")
	}
	if pagination.TotalItems > 0 {
		fmt.Println("Catalog already has categories, nothing to seed")
		return
	}

	fmt.Println("=== Seeding Catalog ===")

	// Intakes start on the first Monday at least three weeks out and run
	// every six weeks after.
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 21)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}

	courses, intakes := 0, 0
	for _, group := range catalog {
		category, err := catalogService.CreateCategory(ctx, &model.CategoryRequest{
			Name:        group.category,
			Description: group.description,
		})
		if err != nil {
			log.Fatal().Err(err).Str("category", group.category).Msg("Failed to create category")
		}
		fmt.Printf("Category %q (%s)\n", category.Name, category.Slug)

		for _, sc := range group.courses {
			course, err := catalogService.CreateCourse(ctx, &model.CourseRequest{
				CategoryID:    category.ID,
				Title:         sc.title,
				Summary:       sc.summary,
				Description:   sc.body,
				PriceCents:    sc.price,
				DurationHours: sc.hours,
				IsPublished:   true,
			})
			if err != nil {
				log.Fatal().Err(err).Str("course", sc.title).Msg("Failed to create course")
			}
			courses++

			days := sc.hours / 8
			if days < 1 {
				days = 1
			}
			for i := 0; i < 2; i++ {
				begin := start.AddDate(0, 0, 42*i)
				_, err := intakeService.Create(ctx, &model.IntakeRequest{
					CourseID:             course.ID,
					StartDate:            begin,
					EndDate:              begin.AddDate(0, 0, days-1),
					RegistrationOpensAt:  time.Now().UTC(),
					RegistrationClosesAt: begin.AddDate(0, 0, -3),
					Capacity:             16,
					Location:             sc.location,
				})
				if err != nil {
					log.Fatal().Err(err).Str("course", sc.title).Msg("Failed to create intake")
				}
				intakes++
			}
			fmt.Printf("  Course %q with 2 intakes\n", course.Title)
		}
	}

	fmt.Printf("\nSeeded %d categories, %d courses and %d intakes\n", len(catalog), courses, intakes)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/database"
	"github.com/edumitra/edumitra-backend/internal/logger"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
)

// Seeds a starter CBSE syllabus tree (boards → standards → subjects →
// chapters) into one institute so a fresh tenant can author quizzes
// immediately.
func main() {
	var code string
	flag.StringVar(&code, "institute", "", "Institute code (subdomain) to seed")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		log.Fatal().Msg("Usage: seed-syllabus -institute <code>")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	instituteRepo := repository.NewInstituteRepository(pool)
	syllabusRepo := repository.NewSyllabusRepository(pool)

	inst, err := instituteRepo.GetByCode(ctx, code)
	if err != nil {
		log.Fatal().Err(err).Str("code", code).Msg("Institute not found — run create-admin first")
	}

	fmt.Printf("=== Seeding syllabus for institute '%s' (%s) ===\n", inst.Name, inst.Code)

	subjects := map[string][]string{
		"Mathematics": {
			"Real Numbers", "Polynomials", "Linear Equations", "Quadratic Equations",
			"Arithmetic Progressions", "Triangles", "Coordinate Geometry", "Trigonometry",
			"Circles", "Statistics and Probability",
		},
		"Science": {
			"Chemical Reactions", "Acids Bases and Salts", "Metals and Non-metals",
			"Life Processes", "Control and Coordination", "Light", "Electricity",
			"Magnetic Effects of Current", "Our Environment",
		},
		"Social Science": {
			"Nationalism in India", "Resources and Development", "Water Resources",
			"Agriculture", "Power Sharing", "Federalism", "Sectors of the Indian Economy",
		},
	}

	board := &model.Board{InstituteID: inst.ID, Name: "CBSE"}
	if err := syllabusRepo.CreateBoard(ctx, board); err != nil {
		log.Fatal().Err(err).Msg("Failed to create board")
	}
	fmt.Printf("Created board '%s' with ID: %d\n", board.Name, board.ID)

	chapterCount := 0
	for _, stdName := range []string{"Class 9", "Class 10"} {
		standard := &model.Standard{BoardID: board.ID, Name: stdName}
		if err := syllabusRepo.CreateStandard(ctx, standard); err != nil {
			log.Fatal().Err(err).Msg("Failed to create standard")
		}

		for subjName, chapters := range subjects {
			subject := &model.Subject{StandardID: standard.ID, Name: subjName}
			if err := syllabusRepo.CreateSubject(ctx, subject); err != nil {
				log.Fatal().Err(err).Msg("Failed to create subject")
			}

			for i, chName := range chapters {
				chapter := &model.Chapter{SubjectID: subject.ID, Name: chName, OrderNum: i + 1}
				if err := syllabusRepo.CreateChapter(ctx, chapter); err != nil {
					fmt.Printf("Error creating chapter %s: %v\n", chName, err)
					continue
				}
				chapterCount++
			}
		}
		fmt.Printf("Seeded %s\n", stdName)
	}

	fmt.Printf("\nSeed completed! 1 board, 2 standards, %d subjects each, %d chapters total.\n",
		len(subjects), chapterCount)
}

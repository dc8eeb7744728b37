// Package seed creates demo data for development databases. Not wired into
// the server; run it through cmd/seed.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the login password for every seeded account.
const DefaultPassword = "password123"

var tagVocabulary = []string{
	"golang", "databases", "distributed-systems", "testing", "observability",
	"web", "security", "performance", "tooling", "career",
}

// Seeder populates the database with fake accounts, tags and articles.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes the seeded tables.
func (s *Seeder) ClearAll() error {
	for _, stmt := range []string{
		"DELETE FROM article_tags",
		"DELETE FROM articles",
		"DELETE FROM tags",
		"DELETE FROM accounts",
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("cleanup failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// Run seeds numAccounts accounts, the tag vocabulary and numArticles
// articles with randomized authors and tag sets.
func (s *Seeder) Run(numAccounts, numArticles int) error {
	accounts, err := s.seedAccounts(numAccounts)
	if err != nil {
		return err
	}
	tags, err := s.seedTags()
	if err != nil {
		return err
	}
	if err := s.seedArticles(numArticles, accounts, tags); err != nil {
		return err
	}

	log.Printf("Seeded %d accounts, %d tags, %d articles (password for all accounts: %s)",
		len(accounts), len(tags), numArticles, DefaultPassword)
	return nil
}

func (s *Seeder) seedAccounts(n int) ([]models.Account, error) {
	// One digest shared across all seeded accounts keeps seeding fast.
	digest, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, n)
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		account := models.Account{
			Username: fmt.Sprintf("%s%d", username, i),
			Email:    fmt.Sprintf("%s%d@%s", username, i, gofakeit.DomainName()),
			Password: string(digest),
			Bio:      gofakeit.Sentence(8),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := s.db.Create(&account).Error; err != nil {
			return nil, fmt.Errorf("seeding account %d: %w", i, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *Seeder) seedTags() ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagVocabulary))
	for _, name := range tagVocabulary {
		tag := models.Tag{Name: name, Description: gofakeit.Sentence(6)}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("seeding tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *Seeder) seedArticles(n int, accounts []models.Account, tags []models.Tag) error {
	if len(accounts) == 0 {
		return fmt.Errorf("cannot seed articles without accounts")
	}

	for i := 0; i < n; i++ {
		author := accounts[s.rng.Intn(len(accounts))]
		article := models.Article{
			Title:    gofakeit.Sentence(5),
			Content:  gofakeit.Paragraph(2, 4, 8, "\n\n"),
			AuthorID: author.ID,
			Tags:     s.pickTags(tags),
			// Spread publication dates over the last 90 days.
			CreatedAt: time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour),
		}
		if err := s.db.Create(&article).Error; err != nil {
			return fmt.Errorf("seeding article %d: %w", i, err)
		}
	}
	return nil
}

func (s *Seeder) pickTags(tags []models.Tag) []models.Tag {
	count := s.rng.Intn(4) // 0 to 3 tags
	if count == 0 || len(tags) == 0 {
		return nil
	}

	picked := make([]models.Tag, 0, count)
	seen := make(map[uint]struct{}, count)
	for len(picked) < count {
		tag := tags[s.rng.Intn(len(tags))]
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		picked = append(picked, tag)
	}
	return picked
}

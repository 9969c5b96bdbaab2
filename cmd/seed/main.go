package main

import (
	_ "embed"
	"errors"
	"flag"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/config"
	"github.com/pageza/recipewizard/backend/internal/database"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
)

//go:embed recipes.yaml
var sampleRecipes []byte

type seedIngredient struct {
	Name     string `yaml:"name"`
	Amount   string `yaml:"amount"`
	Unit     string `yaml:"unit"`
	Category string `yaml:"category"`
}

type seedRecipe struct {
	Title        string           `yaml:"title"`
	Description  string           `yaml:"description"`
	Difficulty   string           `yaml:"difficulty"`
	Servings     int              `yaml:"servings"`
	PrepTime     int              `yaml:"prep_time"`
	CookTime     int              `yaml:"cook_time"`
	Instructions []string         `yaml:"instructions"`
	Ingredients  []seedIngredient `yaml:"ingredients"`
}

func main() {
	email := flag.String("email", "demo@recipewizard.local", "Email of the default shopping list user")
	password := flag.String("password", "", "Password for the default user (login disabled when empty)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, database.Migrations(), log); err != nil {
		log.Fatal("Migration failed", "error", err)
	}

	user, err := ensureDefaultUser(db, cfg.DefaultUserID, *email, *password)
	if err != nil {
		log.Fatal("Failed to seed default user", "error", err)
	}
	log.Info("Default user ready", "user_id", user.ID, "email", user.Email)

	var recipes []seedRecipe
	if err := yaml.Unmarshal(sampleRecipes, &recipes); err != nil {
		log.Fatal("Failed to parse sample recipes", "error", err)
	}
	created, err := seedRecipes(db, user.ID, recipes)
	if err != nil {
		log.Fatal("Failed to seed recipes", "error", err)
	}
	log.Info("Seeding complete", "recipes_created", created, "recipes_total", len(recipes))
}

// ensureDefaultUser returns the user the shopping list falls back to, creating it with
// the configured id when missing.
func ensureDefaultUser(db *gorm.DB, id uint, email, password string) (*models.User, error) {
	var user models.User
	err := db.First(&user, id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash := "!"
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}
	user = models.User{
		ID:              id,
		Email:           email,
		HashedPassword:  hash,
		IsActive:        true,
		Units:           "metric",
		DefaultServings: 4,
		ThemePreference: "system",
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	if database.IsPostgres(db) {
		// keep the serial ahead of the explicit id
		if err := db.Exec("SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))").Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// seedRecipes inserts recipes whose title is not yet present for ownerID.
func seedRecipes(db *gorm.DB, ownerID uint, recipes []seedRecipe) (int, error) {
	created := 0
	for _, r := range recipes {
		var count int64
		if err := db.Model(&models.Recipe{}).Where("title = ? AND created_by_id = ?", r.Title, ownerID).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}

		recipe := models.Recipe{
			Title:          r.Title,
			Description:    r.Description,
			Difficulty:     r.Difficulty,
			Servings:       intPtr(r.Servings),
			PrepTime:       intPtr(r.PrepTime),
			CookTime:       intPtr(r.CookTime),
			Instructions:   datatypes.JSONSlice[string](r.Instructions),
			OriginalPrompt: "seed: " + r.Title,
			CreatedByID:    &ownerID,
		}
		for _, ing := range r.Ingredients {
			ri := models.RecipeIngredient{Name: ing.Name, Amount: ing.Amount, Category: ing.Category}
			if ing.Unit != "" {
				unit := ing.Unit
				ri.Unit = &unit
			}
			recipe.Ingredients = append(recipe.Ingredients, ri)
		}
		if err := db.Create(&recipe).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/config"
	"github.com/pageza/cookbook/backend/internal/database"
	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

type seedUser struct {
	email, first, last string
	admin              bool
}

var demoUsers = []seedUser{
	{email: "admin@example.com", first: "Site", last: "Admin", admin: true},
	{email: "julia@example.com", first: "Julia", last: "Child"},
	{email: "marcella@example.com", first: "Marcella", last: "Hazan"},
}

type seedRecipe struct {
	owner       string
	name        string
	description string
	course      models.CourseType
	kind        models.RecipeType
	protein     models.Protein
	style       models.EthnicStyle
	prep        int
	cook        int
	servings    int
	ingredients [][3]string
	steps       []string
}

var demoRecipes = []seedRecipe{
	{
		owner:       "marcella@example.com",
		name:        "Spaghetti Carbonara",
		description: "Classic Roman pasta with eggs, cheese and guanciale.",
		course:      models.CourseDinner,
		kind:        models.RecipePasta,
		protein:     models.ProteinPork,
		style:       models.StyleItalian,
		prep:        10,
		cook:        15,
		servings:    4,
		ingredients: [][3]string{{"400", "g", "spaghetti"}, {"150", "g", "guanciale"}, {"4", "", "eggs"}, {"50", "g", "pecorino romano"}},
		steps:       []string{"Boil the spaghetti in salted water.", "Render the guanciale.", "Toss pasta with eggs, cheese and guanciale off the heat."},
	},
	{
		owner:       "julia@example.com",
		name:        "French Omelette",
		description: "Soft rolled omelette finished with butter.",
		course:      models.CourseBreakfast,
		kind:        models.RecipeEntree,
		protein:     models.ProteinVegetarian,
		style:       models.StyleAmerican,
		prep:        2,
		cook:        3,
		servings:    1,
		ingredients: [][3]string{{"3", "", "eggs"}, {"1", "tbsp", "butter"}, {"", "", "salt"}},
		steps:       []string{"Beat the eggs with salt.", "Cook in foaming butter, stirring, then roll onto a plate."},
	},
	{
		owner:       "julia@example.com",
		name:        "Boeuf Bourguignon",
		description: "Beef braised in red wine with mushrooms and onions.",
		course:      models.CourseDinner,
		kind:        models.RecipeEntree,
		protein:     models.ProteinBeef,
		style:       models.StyleAmerican,
		prep:        30,
		cook:        180,
		servings:    6,
		ingredients: [][3]string{{"1.5", "kg", "beef chuck"}, {"750", "ml", "red wine"}, {"250", "g", "mushrooms"}, {"12", "", "pearl onions"}},
		steps:       []string{"Brown the beef in batches.", "Add wine and braise for three hours.", "Finish with sauteed mushrooms and onions."},
	},
	{
		owner:       "marcella@example.com",
		name:        "Minestrone",
		description: "Vegetable soup with beans and pasta.",
		course:      models.CourseLunch,
		kind:        models.RecipeSoup,
		protein:     models.ProteinVegetarian,
		style:       models.StyleItalian,
		prep:        20,
		cook:        45,
		servings:    6,
		ingredients: [][3]string{{"2", "", "carrots"}, {"2", "", "celery stalks"}, {"400", "g", "cannellini beans"}, {"100", "g", "small pasta"}},
		steps:       []string{"Sweat the vegetables.", "Add stock and beans and simmer.", "Cook the pasta in the soup."},
	},
}

func main() {
	password := flag.String("password", "testpassword123", "Password for every seeded account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	ids, err := seedUsers(ctx, db, logger, *password)
	if err != nil {
		logger.Fatal("failed to seed users", zap.Error(err))
	}

	svc := service.NewRecipeService(db, nil, logger, service.RecipeServiceOptions{})
	for _, r := range demoRecipes {
		owner := ids[r.owner]
		if _, err := svc.Create(ctx, owner, r.request(), nil); err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				logger.Info("skipping recipe", zap.String("name", r.name), zap.String("reason", verr.Error()))
				continue
			}
			logger.Fatal("failed to seed recipe", zap.String("name", r.name), zap.Error(err))
		}
		logger.Info("seeded recipe", zap.String("name", r.name))
	}
}

// seedUsers creates missing accounts and returns the identity of every seed user.
func seedUsers(ctx context.Context, db *gorm.DB, logger *zap.Logger, password string) (map[string]types.Identity, error) {
	users := service.NewUserService(db, logger)
	ids := map[string]types.Identity{}

	for _, u := range demoUsers {
		var existing models.User
		err := db.WithContext(ctx).Where("email = ?", u.email).First(&existing).Error
		switch {
		case err == nil:
			ids[u.email] = types.Identity{UserID: existing.ID, IsAdmin: existing.IsAdmin}
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}

		created, err := users.Register(ctx, &types.RegisterRequest{
			Email:     u.email,
			FirstName: u.first,
			LastName:  u.last,
			Password:  password,
		})
		if err != nil {
			return nil, err
		}
		if u.admin {
			if err := db.WithContext(ctx).Model(created).Update("is_admin", true).Error; err != nil {
				return nil, err
			}
		}
		ids[u.email] = types.Identity{UserID: created.ID, IsAdmin: u.admin}
		logger.Info("seeded user", zap.String("email", u.email))
	}
	return ids, nil
}

func (r seedRecipe) request() *types.RecipeRequest {
	req := &types.RecipeRequest{
		Name:           r.name,
		Description:    r.description,
		CourseType:     string(r.course),
		RecipeType:     string(r.kind),
		PrimaryProtein: string(r.protein),
		EthnicStyle:    string(r.style),
		PrepTime:       &r.prep,
		CookTime:       &r.cook,
		NumberServings: &r.servings,
	}

	ingredients := types.IngredientSectionInput{Title: "Ingredients"}
	for _, i := range r.ingredients {
		in := types.IngredientInput{Name: i[2]}
		if i[0] != "" {
			q := i[0]
			in.Quantity = &q
		}
		if i[1] != "" {
			u := i[1]
			in.Unit = &u
		}
		ingredients.Ingredients = append(ingredients.Ingredients, in)
	}
	req.IngredientSections = []types.IngredientSectionInput{ingredients}

	steps := types.InstructionSectionInput{Title: "Method"}
	for _, s := range r.steps {
		steps.Instructions = append(steps.Instructions, types.InstructionInput{Step: s})
	}
	req.InstructionSections = []types.InstructionSectionInput{steps}
	return req
}

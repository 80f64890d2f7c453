package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"servewise-backend/internal/db"
	"servewise-backend/internal/model"
	"servewise-backend/internal/service"
	"servewise-backend/utilities"
)

// fixture is the YAML document the seed command loads. Templates are
// uploaded first so that every item added afterwards synthesizes against them.
type fixture struct {
	Templates   []model.LessonTemplate `yaml:"templates"`
	Restaurants []fixtureRestaurant    `yaml:"restaurants"`
}

type fixtureRestaurant struct {
	Name      string            `yaml:"name"`
	Employees []fixtureEmployee `yaml:"employees"`
	Dishes    []fixtureDish     `yaml:"dishes"`
	Wines     []fixtureWine     `yaml:"wines"`
}

type fixtureEmployee struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Role      string `yaml:"role"`
}

type fixtureDish struct {
	Name                string   `yaml:"name"`
	Description         string   `yaml:"description"`
	Price               string   `yaml:"price"`
	DishTypes           []string `yaml:"dish_types"`
	Allergens           []string `yaml:"allergens"`
	DietaryRestrictions []string `yaml:"dietary_restrictions"`
	Accommodations      []string `yaml:"accommodations"`
	Temperature         string   `yaml:"temperature"`
	IsVegetarian        bool     `yaml:"is_vegetarian"`
	IsVegan             bool     `yaml:"is_vegan"`
	IsGlutenFree        bool     `yaml:"is_gluten_free"`
	IsSpicy             bool     `yaml:"is_spicy"`
	CanSubstitute       bool     `yaml:"can_substitute"`
}

type fixtureWine struct {
	ProductName  string   `yaml:"product_name"`
	Producer     string   `yaml:"producer"`
	Varietals    []string `yaml:"varietals"`
	Vintage      int      `yaml:"vintage"`
	Country      string   `yaml:"country"`
	MajorRegion  string   `yaml:"major_region"`
	Category     string   `yaml:"category"`
	Style        string   `yaml:"style"`
	ByTheGlass   bool     `yaml:"by_the_glass"`
	ByTheBottle  bool     `yaml:"by_the_bottle"`
	GlassPrice   string   `yaml:"glass_price"`
	BottlePrice  string   `yaml:"bottle_price"`
	IsOrganic    bool     `yaml:"is_organic"`
	IsBiodynamic bool     `yaml:"is_biodynamic"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [fixture.yaml]",
	Short: "Load restaurants, menus and lesson templates from a YAML fixture",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "fixtures/seed.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		fx, err := loadFixture(path)
		if err != nil {
			return err
		}

		rt, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		conn := db.GetDB()
		if err := db.AutoMigrate(conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a, err := newApp(conn, rt.cfg, rt.log)
		if err != nil {
			return err
		}
		report, err := applyFixture(cmd.Context(), a, fx, rt.log)
		a.bus.Wait()
		if err != nil {
			return err
		}
		rt.log.Info("seed complete",
			"templates", len(fx.Templates),
			"restaurants", len(fx.Restaurants),
			"lessons_created", report.LessonsCreated,
			"questions_added", report.QuestionsAdded,
		)
		return nil
	},
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fx fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &fx, nil
}

// applyFixture writes the fixture through the services, so items trigger
// the same synthesis as the API. It returns the summed synthesis report.
func applyFixture(ctx context.Context, a *app, fx *fixture, log *utilities.Logger) (service.SynthesisReport, error) {
	var total service.SynthesisReport
	for i := range fx.Templates {
		if _, err := a.services.Templates.Upload(ctx, &fx.Templates[i]); err != nil {
			return total, fmt.Errorf("template %d: %w", i+1, err)
		}
	}
	// Let the fan-out for the uploads settle before items are added.
	a.bus.Wait()

	for _, fr := range fx.Restaurants {
		restaurant := &model.Restaurant{ID: uuid.New(), Name: fr.Name, IsActive: true}
		for _, fe := range fr.Employees {
			role := fe.Role
			if role == "" {
				role = model.RoleEmployee
			}
			restaurant.Employees = append(restaurant.Employees, model.Employee{
				ID:        uuid.New(),
				FirstName: fe.FirstName,
				LastName:  fe.LastName,
				Email:     fe.Email,
				Role:      role,
				IsActive:  true,
			})
		}
		if err := a.restaurants.Create(ctx, nil, restaurant); err != nil {
			return total, fmt.Errorf("restaurant %q: %w", fr.Name, err)
		}

		for _, fd := range fr.Dishes {
			dish, err := fd.toModel()
			if err != nil {
				return total, fmt.Errorf("dish %q: %w", fd.Name, err)
			}
			res, err := a.services.Catalog.CreateDish(ctx, restaurant.ID, dish)
			if err != nil {
				return total, fmt.Errorf("dish %q: %w", fd.Name, err)
			}
			total = mergeReport(total, res, log)
		}
		for _, fw := range fr.Wines {
			wine, err := fw.toModel()
			if err != nil {
				return total, fmt.Errorf("wine %q: %w", fw.ProductName, err)
			}
			res, err := a.services.Catalog.CreateWine(ctx, restaurant.ID, wine)
			if err != nil {
				return total, fmt.Errorf("wine %q: %w", fw.ProductName, err)
			}
			total = mergeReport(total, res, log)
		}
		log.Info("restaurant seeded", "restaurant", restaurant.Name, "id", restaurant.ID,
			"dishes", len(fr.Dishes), "wines", len(fr.Wines))
	}
	return total, nil
}

func mergeReport(total service.SynthesisReport, res *service.ItemCreated, log *utilities.Logger) service.SynthesisReport {
	if res.SynthesisErr != nil {
		log.Warn("lesson synthesis incomplete", "item_id", res.ItemID, "error", res.SynthesisErr)
	}
	total.LessonsCreated += res.Report.LessonsCreated
	total.LessonsUpdated += res.Report.LessonsUpdated
	total.QuestionsAdded += res.Report.QuestionsAdded
	total.Skipped += res.Report.Skipped
	total.Unresolved += res.Report.Unresolved
	return total
}

func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (fd fixtureDish) toModel() (*model.Dish, error) {
	price, err := parsePrice(fd.Price)
	if err != nil {
		return nil, err
	}
	return &model.Dish{
		Name:                fd.Name,
		Description:         fd.Description,
		Price:               price,
		DishTypes:           fd.DishTypes,
		Allergens:           fd.Allergens,
		DietaryRestrictions: fd.DietaryRestrictions,
		Accommodations:      fd.Accommodations,
		Temperature:         fd.Temperature,
		IsVegetarian:        fd.IsVegetarian,
		IsVegan:             fd.IsVegan,
		IsGlutenFree:        fd.IsGlutenFree,
		IsSpicy:             fd.IsSpicy,
		CanSubstitute:       fd.CanSubstitute,
	}, nil
}

func (fw fixtureWine) toModel() (*model.Wine, error) {
	glass, err := parsePrice(fw.GlassPrice)
	if err != nil {
		return nil, err
	}
	bottle, err := parsePrice(fw.BottlePrice)
	if err != nil {
		return nil, err
	}
	return &model.Wine{
		ProductName:  fw.ProductName,
		Producer:     fw.Producer,
		Varietals:    fw.Varietals,
		IsBlend:      len(fw.Varietals) > 1,
		Vintage:      fw.Vintage,
		Country:      fw.Country,
		MajorRegion:  fw.MajorRegion,
		Category:     fw.Category,
		Style:        fw.Style,
		ByTheGlass:   fw.ByTheGlass,
		ByTheBottle:  fw.ByTheBottle,
		GlassPrice:   glass,
		BottlePrice:  bottle,
		IsOrganic:    fw.IsOrganic,
		IsBiodynamic: fw.IsBiodynamic,
	}, nil
}

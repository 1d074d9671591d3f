package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/streetfood/rawmart/pkg/db/models"
)

// SeedData is the reference catalog shipped with the storefront.
type SeedData struct {
	Suppliers  []models.Supplier
	Categories []models.Category
	Materials  []models.Material
}

// ReferenceCatalog returns a fresh copy of the reference catalog.
func ReferenceCatalog() SeedData {
	return SeedData{
		Suppliers: []models.Supplier{
			{ID: 1, Name: "Fresh Farm Co.", Verified: true, Location: "Mumbai"},
			{ID: 2, Name: "Green Valley Suppliers", Verified: true, Location: "Delhi"},
			{ID: 3, Name: "Spice Master Ltd.", Verified: false, Location: "Chennai"},
			{ID: 4, Name: "Quality Foods Inc.", Verified: true, Location: "Bangalore"},
			{ID: 5, Name: "Local Market Hub", Verified: false, Location: "Pune"},
		},
		Categories: []models.Category{
			{ID: "tomatoes", Name: "Tomatoes", Icon: "🍅", Position: 1},
			{ID: "flour", Name: "Flour", Icon: "🌾", Position: 2},
			{ID: "oil", Name: "Oil", Icon: "🫒", Position: 3},
			{ID: "spices", Name: "Spices", Icon: "🌶️", Position: 4},
			{ID: "onions", Name: "Onions", Icon: "🧅", Position: 5},
			{ID: "rice", Name: "Rice", Icon: "🌾", Position: 6},
			{ID: "vegetables", Name: "Vegetables", Icon: "🥬", Position: 7},
			{ID: "meat", Name: "Meat", Icon: "🥩", Position: 8},
		},
		Materials: []models.Material{
			material(1, "Fresh Tomatoes", "tomatoes", 45, 38, 50, "kg", 1, true,
				"photo-1546470427-227527c9e1eb", "Fresh red tomatoes, perfect for street food preparation"),
			material(2, "Wheat Flour", "flour", 35, 30, 100, "kg", 2, true,
				"photo-1574323347407-f5e1ad6d020b", "Premium quality wheat flour for breads and rotis"),
			material(3, "Sunflower Oil", "oil", 120, 110, 20, "liter", 4, true,
				"photo-1474979266404-7eaacbcd87c5", "Pure sunflower oil for cooking and frying"),
			material(4, "Red Chili Powder", "spices", 180, 160, 10, "kg", 3, false,
				"photo-1596040033229-a9821ebd058d", "Spicy red chili powder for authentic taste"),
			material(5, "Large Onions", "onions", 30, 25, 100, "kg", 1, true,
				"photo-1518977676601-b53f82aba655", "Fresh large onions for cooking base"),
			material(6, "Basmati Rice", "rice", 85, 78, 50, "kg", 2, true,
				"photo-1586201375761-83865001e31c", "Premium basmati rice for biryanis and pulao"),
			material(7, "Turmeric Powder", "spices", 220, 200, 5, "kg", 3, true,
				"photo-1615485500704-8e990f9900f7", "Pure turmeric powder for color and flavor"),
			material(8, "Green Vegetables Mix", "vegetables", 55, 48, 30, "kg", 5, true,
				"photo-1540420773420-3366772f4999", "Fresh mixed green vegetables"),
			material(9, "Chicken (Fresh)", "meat", 280, 260, 20, "kg", 4, true,
				"photo-1604503468506-a8da13d82791", "Fresh chicken for non-veg preparations"),
			material(10, "Cumin Seeds", "spices", 350, 320, 5, "kg", 3, true,
				"photo-1506905925346-21bda4d32df4", "Aromatic cumin seeds for seasoning"),
		},
	}
}

func material(id int64, name, category string, price, groupPrice int64, minGroup int, unit string, supplierID int64, inStock bool, photo, description string) models.Material {
	return models.Material{
		ID:               id,
		Name:             name,
		CategoryID:       category,
		Price:            decimal.NewFromInt(price),
		GroupPrice:       decimal.NewFromInt(groupPrice),
		MinGroupQuantity: minGroup,
		Unit:             unit,
		InStock:          inStock,
		SupplierID:       supplierID,
		Image:            "https://images.unsplash.com/" + photo + "?w=400&h=300&fit=crop",
		Description:      description,
	}
}

// Seed inserts the reference catalog. Rows that already exist are left alone,
// so running it twice is harmless.
func Seed(ctx context.Context, db *gorm.DB) error {
	data := ReferenceCatalog()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip := clause.OnConflict{DoNothing: true}
		if err := tx.Clauses(skip).Create(&data.Suppliers).Error; err != nil {
			return fmt.Errorf("seed suppliers: %w", err)
		}
		if err := tx.Clauses(skip).Create(&data.Categories).Error; err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		if err := tx.Clauses(skip).Omit("Supplier").Create(&data.Materials).Error; err != nil {
			return fmt.Errorf("seed materials: %w", err)
		}
		return nil
	})
}

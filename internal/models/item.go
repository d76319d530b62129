package models

import (
	"math"

	"gorm.io/gorm"
)

// Item is a priced article that belongs to exactly one store.
type Item struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"uniqueIndex;type:varchar(80);not null"`
	Price   float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	StoreID uint    `json:"store_id" gorm:"index;not null"`
}

func (Item) TableName() string {
	return "items"
}

// BeforeSave keeps the price at two fractional digits.
func (i *Item) BeforeSave(tx *gorm.DB) error {
	i.Price = RoundPrice(i.Price)
	return nil
}

// RoundPrice rounds a price to cents.
func RoundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

// ItemJSON is the externally visible form of an item. The store id is not echoed.
type ItemJSON struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (i *Item) JSON() ItemJSON {
	return ItemJSON{Name: i.Name, Price: i.Price}
}

package models

// Store owns zero or more items.
type Store struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(80);not null"`
	// Items is only declared so the schema gets the foreign key; it is never preloaded.
	Items []Item `json:"-" gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreJSON is the externally visible form of a store.
type StoreJSON struct {
	Name  string     `json:"name"`
	Items []ItemJSON `json:"items"`
}

// JSON serializes the store together with the items fetched for it.
func (s *Store) JSON(items []Item) StoreJSON {
	out := StoreJSON{Name: s.Name, Items: make([]ItemJSON, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, items[i].JSON())
	}
	return out
}

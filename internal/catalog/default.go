package catalog

const (
	DefaultPrimaryKey = "houseBlend"
	DefaultToteKey    = "toteSet"
)

var defaultEntries = []Entry{
	{Key: "houseBlend", ID: "01", Name: "House Blend", Price: 500, Category: CategoryHot},
	{Key: "ethiopia", ID: "02", Name: "Ethiopia Yirgacheffe", Price: 600, Category: CategoryHot},
	{Key: "guatemala", ID: "03", Name: "Guatemala Antigua", Price: 600, Category: CategoryHot},
	{Key: "kenya", ID: "04", Name: "Kenya AA", Price: 700, Category: CategoryHot},
	{Key: "colombia", ID: "05", Name: "Colombia Huila", Price: 600, Category: CategoryHot},
	{Key: "iceBlend", ID: "06", Name: "Iced House Blend", Price: 500, Category: CategoryIce},
	{Key: "iceCoffeeJelly", ID: "07", Name: "Iced Coffee Jelly", Price: 600, Category: CategoryIce},
	{Key: "cafeAuLait", ID: "08", Name: "Café au Lait", Price: 600, Category: CategoryHotWithMilk},
	{Key: "iceCafeAuLait", ID: "09", Name: "Iced Café au Lait", Price: 600, Category: CategoryIceWithMilk},
	{Key: "milk", ID: "10", Name: "Extra Milk", Price: 100, Category: CategoryMilk},
	{Key: "cookie", ID: "11", Name: "Cookie", Price: 200, Category: CategoryOthers},
	{Key: "dripBag", ID: "12", Name: "Drip Bag", Price: 300, Category: CategoryOthers},
	{Key: "toteSet", ID: "13", Name: "Tote Bag Set", Price: 1500, Category: CategoryOthers},
}

// Default returns the built-in event menu.
func Default() *Catalog {
	c, err := New(defaultEntries, DefaultPrimaryKey, DefaultToteKey)
	if err != nil {
		panic("catalog: default menu is invalid: " + err.Error())
	}
	return c
}

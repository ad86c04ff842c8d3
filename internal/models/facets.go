package models

// Facets are closed enumerations. Values outside these sets are rejected
// before they reach storage.

type CourseType string

const (
	CourseBreakfast CourseType = "Breakfast"
	CourseLunch     CourseType = "Lunch"
	CourseSnacks    CourseType = "Snacks"
	CourseAppetizer CourseType = "Appetizer"
	CourseDinner    CourseType = "Dinner"
	CourseBreads    CourseType = "Breads"
	CourseDessert   CourseType = "Dessert"
)

var CourseTypes = []CourseType{
	CourseBreakfast, CourseLunch, CourseSnacks, CourseAppetizer, CourseDinner, CourseBreads, CourseDessert,
}

func (c CourseType) Valid() bool { return oneOf(CourseTypes, c) }

type RecipeType string

const (
	RecipeEntree   RecipeType = "Entrée (Main)"
	RecipeSoup     RecipeType = "Soup"
	RecipeSalad    RecipeType = "Salad"
	RecipePizza    RecipeType = "Pizza"
	RecipePasta    RecipeType = "Pasta"
	RecipeStarter  RecipeType = "Starter"
	RecipeSideDish RecipeType = "Side Dish"
	RecipeSauce    RecipeType = "Sauce"
)

var RecipeTypes = []RecipeType{
	RecipeEntree, RecipeSoup, RecipeSalad, RecipePizza, RecipePasta, RecipeStarter, RecipeSideDish, RecipeSauce,
}

func (r RecipeType) Valid() bool { return oneOf(RecipeTypes, r) }

type Protein string

const (
	ProteinBeef       Protein = "Beef"
	ProteinChicken    Protein = "Chicken"
	ProteinFish       Protein = "Fish"
	ProteinPork       Protein = "Pork"
	ProteinTurkey     Protein = "Turkey"
	ProteinVegetarian Protein = "Vegetarian"
	ProteinNone       Protein = "None"
)

var Proteins = []Protein{
	ProteinBeef, ProteinChicken, ProteinFish, ProteinPork, ProteinTurkey, ProteinVegetarian, ProteinNone,
}

func (p Protein) Valid() bool { return oneOf(Proteins, p) }

type EthnicStyle string

const (
	StyleAmerican      EthnicStyle = "American"
	StyleChinese       EthnicStyle = "Chinese"
	StyleCaribbean     EthnicStyle = "Caribbean"
	StyleIndian        EthnicStyle = "Indian"
	StyleItalian       EthnicStyle = "Italian"
	StyleKorean        EthnicStyle = "Korean"
	StyleMediterranean EthnicStyle = "Mediterranean / Greek"
	StyleMexican       EthnicStyle = "Mexican / Tex-Mex"
	StyleMiddleEastern EthnicStyle = "Middle Eastern"
	StyleThai          EthnicStyle = "Thai"
)

var EthnicStyles = []EthnicStyle{
	StyleAmerican, StyleChinese, StyleCaribbean, StyleIndian, StyleItalian,
	StyleKorean, StyleMediterranean, StyleMexican, StyleMiddleEastern, StyleThai,
}

func (e EthnicStyle) Valid() bool { return oneOf(EthnicStyles, e) }

// TimeBucket groups recipes by total time in minutes.
type TimeBucket string

const (
	TimeUnder30 TimeBucket = "less_than_30"
	Time30To60  TimeBucket = "30_to_60"
	Time60To120 TimeBucket = "60_to_120"
	TimeOver120 TimeBucket = "more_than_120"
)

var TimeBuckets = []TimeBucket{TimeUnder30, Time30To60, Time60To120, TimeOver120}

func (b TimeBucket) Valid() bool { return oneOf(TimeBuckets, b) }

// Bounds returns the inclusive lower and upper limits of the bucket.
// A negative bound means the side is open.
func (b TimeBucket) Bounds() (min, max int) {
	switch b {
	case TimeUnder30:
		return -1, 30
	case Time30To60:
		return 31, 60
	case Time60To120:
		return 61, 120
	case TimeOver120:
		return 121, -1
	}
	return -1, -1
}

// Contains reports whether total minutes fall into the bucket.
func (b TimeBucket) Contains(total int) bool {
	min, max := b.Bounds()
	if min >= 0 && total < min {
		return false
	}
	if max >= 0 && total > max {
		return false
	}
	return b.Valid()
}

func oneOf[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

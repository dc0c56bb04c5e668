package ewg

// CSS selectors for the Skin Deep markup
const (
	selSearchResult   = "section.product-listings a"
	selIngredientCell = "td.td-ingredient .td-ingredient-interior"
	selProductName    = "h2.product-name.text-block"
	selIngredientRow  = "tr.ingredient-overview-tr"
	selRowName        = "td.td-ingredient .td-ingredient-interior"
	selRowScore       = "td.td-score img.ingredient-score"
	selMoreInfoRows   = "div.ingredient-more-info table tbody tr"
	selCell           = "td"

	moreInfoClass    = "ingredient-more-info-wrapper"
	concernsLabel    = "CONCERNS"
	scoreAltPrefix   = "Ingredient score: "
	concernBullet    = "•"
	searchPathSuffix = "/search/?search="
)

package roopetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pethttpmapper "github.com/Apurer/roopet-api/internal/domains/pets/adapters/http/mapper"
	petsdomain "github.com/Apurer/roopet-api/internal/domains/pets/domain"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

// ShopAPI serves the accessory catalog.
type ShopAPI struct {
	service petsports.Service
}

func NewShopAPI(service petsports.Service) ShopAPI {
	return ShopAPI{service: service}
}

// Get /v1/shop/accessories
// List accessories, optionally filtered by ?category=
func (api *ShopAPI) ListAccessories(c *gin.Context) {
	items, err := api.service.Catalog(c.Request.Context(), petsdomain.Category(c.Query("category")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromCatalog(items))
}

// Get /v1/species
// List the species a new pet can be adopted as
func (api *ShopAPI) ListSpecies(c *gin.Context) {
	species := petsdomain.AllSpecies()
	names := make([]string, 0, len(species))
	for _, s := range species {
		names = append(names, string(s))
	}
	c.JSON(http.StatusOK, names)
}

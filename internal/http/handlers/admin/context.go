package admin

import (
	"github.com/astra-preschool/internal/constants"
	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getAdminActor(c *gin.Context) (service.Actor, bool) {
	adminID, ok := getAdminID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		ID:   adminID,
		Role: constants.RoleAdmin,
	}, true
}

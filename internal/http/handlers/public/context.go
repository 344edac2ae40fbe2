package public

import (
	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		ID:   userID,
		Role: handlershared.GetContextString(c, "role"),
	}, true
}

// api/handlers/responses.go
package handlers

import (
	"net/http"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// problem is the wire shape of every non-payload response: a status, a
// fixed title per status code, a human-readable detail and the error
// class name.
type problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Type   string `json:"type,omitempty"`
}

var titles = map[int]string{
	http.StatusOK:                  "Evento encontrado",
	http.StatusCreated:             "Evento incluido",
	http.StatusBadRequest:          "Evento ou consulta invalidos (BAD Request)",
	http.StatusUnauthorized:        "Não autorizado",
	http.StatusNotFound:            "Evento ou recurso nao encontrado",
	http.StatusConflict:            "Erro de integridade",
	http.StatusInternalServerError: "Erro inesperado",
}

func titleFor(status int) string {
	if t, ok := titles[status]; ok {
		return t
	}
	return http.StatusText(status)
}

// respondError maps a classified domain error to its problem response.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	c.JSON(status, problem{
		Status: status,
		Title:  titleFor(status),
		Detail: err.Error(),
		Type:   string(apperrors.KindOf(err)),
	})
}

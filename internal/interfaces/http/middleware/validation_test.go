package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerForm struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"omitempty,email"`
	Document string `json:"document" binding:"required,document"`
	ZipCode  string `json:"zip_code" binding:"omitempty,cep"`
}

func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	r := gin.New()
	r.POST("/customers", func(c *gin.Context) {
		var req customerForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return r
}

func TestSetupValidator_BrazilianDocuments(t *testing.T) {
	r := validationRouter()

	t.Run("valid CNPJ and CEP", func(t *testing.T) {
		body := `{"name":"Construtora Alfa","document":"11.222.333/0001-81","zip_code":"01310-100"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("invalid document is reported by json name", func(t *testing.T) {
		body := `{"name":"A","email":"nope","document":"123"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		fields := map[string]string{}
		for _, d := range resp.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at least 2 characters", fields["name"])
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Invalid CPF or CNPJ", fields["document"])
	})

	t.Run("malformed JSON has no details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("{")))
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Empty(t, resp.Details)
		assert.Equal(t, "Invalid request body", resp.Error)
	})
}

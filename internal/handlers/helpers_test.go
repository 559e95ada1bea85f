package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/database"
	"mobilenest_back_end/internal/middleware"
	"mobilenest_back_end/internal/models"
	"mobilenest_back_end/internal/services"
	"mobilenest_back_end/internal/utils"
)

const testSecret = "handler-test-secret"

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	handler *Handler
	audit   *audit.MemoryLogger
	router  *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	var mu sync.Mutex
	seq := 1000
	deps := services.Deps{
		DB:     db,
		Proofs: services.NewLocalProofStore(t.TempDir()),
		Logger: zap.NewNop(),
		Now:    func() time.Time { return testNow },
		Suffix: func() int {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return seq
		},
	}
	auditLog := audit.NewMemoryLogger()
	h := New(deps, Options{
		Sessions: sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		Audit:    auditLog,
	})

	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/api/produk", h.Products)

	api := r.Group("/api", middleware.AuthRequired(testSecret, zap.NewNop()))
	auditOrder := middleware.AuditCriticalActions(auditLog, zap.NewNop(), "", audit.ResourceOrder)
	api.Any("/keranjang", h.Cart)
	api.GET("/transaksi", h.Transactions)
	api.POST("/transaksi", auditOrder, h.Transactions)
	api.PUT("/transaksi", auditOrder, h.Transactions)
	api.DELETE("/transaksi", auditOrder, h.Transactions)
	api.Any("/detail-transaksi", h.LineItems)
	api.Any("/pengiriman", h.Shipping)
	api.POST("/checkout/shipping", h.CheckoutShipping)
	api.GET("/checkout/summary", h.CheckoutSummary)
	api.POST("/payment", h.SubmitPayment)

	return &testServer{t: t, db: db, handler: h, audit: auditLog, router: r}
}

func (s *testServer) seedProduct(id uint, name string, price int64) {
	s.t.Helper()
	require.NoError(s.t, s.db.Create(&models.Product{ID: id, Name: name, Price: price, Stock: 10, Category: "smartphone"}).Error)
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(testSecret, userID, "budi@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type call struct {
	method  string
	path    string
	body    interface{}
	user    uint
	role    string
	cookies []*http.Cookie
	// form remplace body pour les requêtes multipart
	form        *bytes.Buffer
	contentType string
}

func (s *testServer) do(c call) *httptest.ResponseRecorder {
	s.t.Helper()

	var body io.Reader
	switch {
	case c.form != nil:
		body = c.form
	case c.body != nil:
		raw, err := json.Marshal(c.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	switch {
	case c.contentType != "":
		req.Header.Set("Content-Type", c.contentType)
	case c.body != nil:
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != 0 {
		role := c.role
		if role == "" {
			role = "customer"
		}
		req.Header.Set("Authorization", "Bearer "+token(s.t, c.user, role))
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}

func addressBody() map[string]interface{} {
	return map[string]interface{}{
		"nama_penerima":  "Budi Santoso",
		"no_telepon":     "081234567890",
		"email":          "budi@example.com",
		"provinsi":       "Jawa Barat",
		"kota":           "Bandung",
		"kecamatan":      "Coblong",
		"kode_pos":       "40132",
		"alamat_lengkap": "Jl. Dago No. 10",
	}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func paymentForm(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("metode_pembayaran", "transfer_bank"))
	require.NoError(t, mw.WriteField("nama_pengirim", "Budi Santoso"))
	require.NoError(t, mw.WriteField("tanggal_transfer", "2025-03-14"))
	if content != nil {
		fw, err := mw.CreateFormFile("bukti_pembayaran", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

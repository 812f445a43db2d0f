package sandbox

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// Envelope shapes the sandbox can serve list responses in. The production
// backend is inconsistent across endpoints, so the sandbox reproduces every
// observed shape; EnvelopeRotate cycles through them per request to exercise
// client-side normalization.
const (
	EnvelopeArray  = "array"
	EnvelopeItems  = "items"
	EnvelopeData   = "data"
	EnvelopeNested = "nested"
	EnvelopeRotate = "rotate"
)

// Config controls sandbox behavior.
type Config struct {
	Seed      int64
	Envelope  string
	JWTSecret string
}

// resourceSpec describes how one REST resource behaves: which fields free-text
// search matches, which extra query parameters filter it, and what DELETE
// means for it.
type resourceSpec struct {
	path         string
	searchFields []string
	defaultSort  string
	required     map[string]string
	filters      map[string]func(doc, string) bool
	// hardDelete removes the document. Otherwise DELETE flips isActive off,
	// which is how the backend soft-deletes patients.
	hardDelete bool
	// textDelete responds with a plain text body instead of JSON, matching
	// the role endpoint's quirk.
	textDelete    bool
	deleteMessage string
}

// Server is the in-memory clinic API.
type Server struct {
	echo        *echo.Echo
	log         zerolog.Logger
	cfg         Config
	collections map[string]*collection
	envelopeSeq atomic.Uint64
}

func New(cfg Config, log zerolog.Logger) *Server {
	if cfg.Envelope == "" {
		cfg.Envelope = EnvelopeNested
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "sandbox-secret"
	}
	s := &Server{
		log:         log.With().Str("component", "sandbox").Logger(),
		cfg:         cfg,
		collections: make(map[string]*collection),
	}
	for _, name := range []string{
		"patients", "doctors", "users", "roles", "floors",
		"offices", "bookings", "histories", "chatbot/prompts",
	} {
		s.collections[name] = newCollection()
	}
	newSeeder(cfg.Seed).seed(s)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	s.routes(e)
	s.echo = e
	return s
}

// Handler exposes the underlying HTTP handler, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on addr until the listener fails.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Str("envelope", s.cfg.Envelope).Msg("sandbox listening")
	return s.echo.Start(addr)
}

func (s *Server) routes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/auth/login", s.login)
	api.POST("/auth/refresh", s.refresh)
	api.GET("/patients/stats", s.patientStats)

	specs := []resourceSpec{
		{
			path:         "patients",
			searchFields: []string{"firstName", "lastName", "fullName", "email", "documentId", "phone"},
			defaultSort:  "lastName",
			required:     map[string]string{"firstName": "El nombre es requerido", "lastName": "El apellido es requerido", "email": "El email es requerido"},
			filters: map[string]func(doc, string) bool{
				"gender": fieldEquals("gender"),
				"minAge": ageAtLeast,
				"maxAge": ageAtMost,
			},
			deleteMessage: "Paciente desactivado correctamente",
		},
		{
			path:         "doctors",
			searchFields: []string{"firstName", "lastName", "fullName", "email", "specialty", "licenseNumber"},
			defaultSort:  "lastName",
			required:     map[string]string{"firstName": "El nombre es requerido", "lastName": "El apellido es requerido", "specialty": "La especialidad es requerida"},
			filters: map[string]func(doc, string) bool{
				"specialty": fieldEquals("specialty"),
			},
		},
		{
			path:         "users",
			searchFields: []string{"firstName", "lastName", "email", "roleName"},
			defaultSort:  "lastName",
			required:     map[string]string{"email": "El email es requerido", "firstName": "El nombre es requerido"},
			filters: map[string]func(doc, string) bool{
				"roleId": fieldEquals("roleId"),
			},
		},
		{
			path:          "roles",
			searchFields:  []string{"name", "description"},
			defaultSort:   "name",
			required:      map[string]string{"name": "El nombre es requerido"},
			hardDelete:    true,
			textDelete:    true,
			deleteMessage: "Rol eliminado correctamente",
		},
		{
			path:         "floors",
			searchFields: []string{"name", "description"},
			defaultSort:  "number",
			required:     map[string]string{"name": "El nombre es requerido"},
		},
		{
			path:         "offices",
			searchFields: []string{"name", "number"},
			defaultSort:  "number",
			required:     map[string]string{"name": "El nombre es requerido", "floorId": "La planta es requerida"},
			filters: map[string]func(doc, string) bool{
				"floorId": fieldEquals("floorId"),
			},
		},
		{
			path:         "bookings",
			searchFields: []string{"reason"},
			defaultSort:  "startsAt",
			required:     map[string]string{"patientId": "El paciente es requerido", "doctorId": "El doctor es requerido"},
			filters: map[string]func(doc, string) bool{
				"status":    fieldEquals("status"),
				"patientId": fieldEquals("patientId"),
				"doctorId":  fieldEquals("doctorId"),
			},
		},
		{
			path:         "histories",
			searchFields: []string{"diagnosis", "treatment", "notes"},
			defaultSort:  "recordedAt",
			required:     map[string]string{"patientId": "El paciente es requerido", "diagnosis": "El diagnóstico es requerido"},
			filters: map[string]func(doc, string) bool{
				"patientId": fieldEquals("patientId"),
				"doctorId":  fieldEquals("doctorId"),
			},
		},
		{
			path:          "chatbot/prompts",
			searchFields:  []string{"name", "content"},
			defaultSort:   "name",
			required:      map[string]string{"name": "El nombre es requerido", "content": "El contenido es requerido"},
			hardDelete:    true,
			deleteMessage: "Prompt eliminado correctamente",
		},
	}
	for _, spec := range specs {
		spec := spec
		g := api.Group("/" + spec.path)
		g.GET("", s.list(spec))
		g.POST("", s.create(spec))
		g.GET("/:id", s.get(spec))
		g.PATCH("/:id", s.update(spec))
		g.PATCH("/:id/activate", s.setActive(spec, true))
		g.PATCH("/:id/deactivate", s.setActive(spec, false))
		g.DELETE("/:id", s.remove(spec))
	}
	api.PATCH("/bookings/:id/cancel", s.cancelBooking)
}

func (s *Server) list(spec resourceSpec) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParams()
		params := pagination.Params{
			Page:  intParam(q.Get("page"), 1),
			Limit: intParam(q.Get("limit"), pagination.DefaultLimit),
		}.Normalize()

		search := strings.TrimSpace(q.Get("search"))
		isActive := q.Get("isActive")
		match := func(d doc) bool {
			if search != "" && !containsFold(d, spec.searchFields, search) {
				return false
			}
			if isActive != "" {
				want := isActive == "true"
				if got, _ := d["isActive"].(bool); got != want {
					return false
				}
			}
			for name, fn := range spec.filters {
				if v := q.Get(name); v != "" && !fn(d, v) {
					return false
				}
			}
			return true
		}

		sortBy := q.Get("sortBy")
		if sortBy == "" {
			sortBy = spec.defaultSort
		}
		desc := strings.EqualFold(q.Get("sortOrder"), "desc")

		items, total := s.collections[spec.path].query(match, sortBy, desc, params.Limit, params.Offset())
		return s.writeList(c, items, total, params)
	}
}

// writeList renders a page in whichever envelope shape the sandbox is
// configured for.
func (s *Server) writeList(c echo.Context, items []doc, total int, params pagination.Params) error {
	shape := s.cfg.Envelope
	if shape == EnvelopeRotate {
		shapes := []string{EnvelopeArray, EnvelopeItems, EnvelopeData, EnvelopeNested}
		shape = shapes[s.envelopeSeq.Add(1)%uint64(len(shapes))]
	}
	switch shape {
	case EnvelopeArray:
		return c.JSON(http.StatusOK, items)
	case EnvelopeItems:
		return c.JSON(http.StatusOK, echo.Map{
			"items": items,
			"total": total,
			"page":  params.Page,
			"limit": params.Limit,
		})
	case EnvelopeData:
		return c.JSON(http.StatusOK, echo.Map{
			"data":  items,
			"total": total,
			"page":  params.Page,
			"limit": params.Limit,
		})
	default:
		return c.JSON(http.StatusOK, echo.Map{
			"data": echo.Map{
				"data":  items,
				"total": total,
				"page":  params.Page,
				"limit": params.Limit,
			},
		})
	}
}

func (s *Server) get(spec resourceSpec) echo.HandlerFunc {
	return func(c echo.Context) error {
		d, ok := s.collections[spec.path].get(c.Param("id"))
		if !ok {
			return notFound(c, spec)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": d})
	}
}

func (s *Server) create(spec resourceSpec) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body doc
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Cuerpo de la petición inválido"})
		}
		for field, msg := range spec.required {
			if strings.TrimSpace(toString(body[field])) == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
			}
		}
		now := time.Now().UTC().Format(time.RFC3339)
		id := uuid.NewString()
		body["id"] = id
		if _, ok := body["isActive"]; !ok {
			body["isActive"] = true
		}
		body["createdAt"] = now
		body["updatedAt"] = now
		if spec.path == "patients" || spec.path == "doctors" {
			if toString(body["fullName"]) == "" {
				body["fullName"] = strings.TrimSpace(toString(body["firstName"]) + " " + toString(body["lastName"]))
			}
		}
		s.collections[spec.path].insert(id, body)
		s.log.Debug().Str("resource", spec.path).Str("id", id).Msg("created")
		return c.JSON(http.StatusCreated, echo.Map{"data": body})
	}
}

func (s *Server) update(spec resourceSpec) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body doc
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Cuerpo de la petición inválido"})
		}
		delete(body, "id")
		body["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		d, ok := s.collections[spec.path].patch(c.Param("id"), body)
		if !ok {
			return notFound(c, spec)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": d})
	}
}

func (s *Server) setActive(spec resourceSpec, active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		d, ok := s.collections[spec.path].patch(c.Param("id"), doc{
			"isActive":  active,
			"updatedAt": time.Now().UTC().Format(time.RFC3339),
		})
		if !ok {
			return notFound(c, spec)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": d})
	}
}

func (s *Server) remove(spec resourceSpec) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		coll := s.collections[spec.path]
		if spec.hardDelete {
			if !coll.remove(id) {
				return notFound(c, spec)
			}
		} else {
			if _, ok := coll.patch(id, doc{"isActive": false}); !ok {
				return notFound(c, spec)
			}
		}
		msg := spec.deleteMessage
		if msg == "" {
			msg = "Eliminado correctamente"
		}
		if spec.textDelete {
			return c.String(http.StatusOK, msg)
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg})
	}
}

func (s *Server) cancelBooking(c echo.Context) error {
	d, ok := s.collections["bookings"].patch(c.Param("id"), doc{
		"status":    "cancelled",
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Cita no encontrada"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": d})
}

func (s *Server) patientStats(c echo.Context) error {
	all := s.collections["patients"].all()
	stats := doc{"total": len(all)}
	active := 0
	ranges := map[string]int{"0-17": 0, "18-35": 0, "36-55": 0, "56-75": 0, "76+": 0}
	for _, d := range all {
		if on, _ := d["isActive"].(bool); on {
			active++
		}
		age, ok := patientAge(d)
		if !ok {
			continue
		}
		switch {
		case age < 18:
			ranges["0-17"]++
		case age <= 35:
			ranges["18-35"]++
		case age <= 55:
			ranges["36-55"]++
		case age <= 75:
			ranges["56-75"]++
		default:
			ranges["76+"]++
		}
	}
	stats["active"] = active
	stats["inactive"] = len(all) - active
	stats["ageRanges"] = ranges
	return c.JSON(http.StatusOK, echo.Map{"data": stats})
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Cuerpo de la petición inválido"})
	}
	for _, d := range s.collections["users"].all() {
		if strings.EqualFold(toString(d["email"]), req.Email) && toString(d["password"]) == req.Password {
			if on, _ := d["isActive"].(bool); !on {
				break
			}
			delete(d, "password")
			access, refresh, err := s.issueTokens(toString(d["id"]), req.Email)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al iniciar sesión"})
			}
			return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{
				"user":         d,
				"accessToken":  access,
				"refreshToken": refresh,
			}})
		}
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Credenciales inválidas"})
}

func (s *Server) refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Sesión expirada"})
	}
	claims := jwt.MapClaims{}
	_, err := jwt.NewParser().ParseWithClaims(req.RefreshToken, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Sesión expirada"})
	}
	sub, _ := claims["sub"].(string)
	d, ok := s.collections["users"].get(sub)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Sesión expirada"})
	}
	delete(d, "password")
	access, refresh, err := s.issueTokens(sub, toString(d["email"]))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al renovar la sesión"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{
		"user":         d,
		"accessToken":  access,
		"refreshToken": refresh,
	}})
}

func (s *Server) issueTokens(userID, email string) (access, refresh string, err error) {
	now := time.Now()
	sign := func(ttl time.Duration) (string, error) {
		t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   userID,
			"email": email,
			"iat":   now.Unix(),
			"exp":   now.Add(ttl).Unix(),
		})
		return t.SignedString([]byte(s.cfg.JWTSecret))
	}
	if access, err = sign(time.Hour); err != nil {
		return "", "", err
	}
	if refresh, err = sign(7 * 24 * time.Hour); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

var notFoundMessages = map[string]string{
	"patients":        "Paciente no encontrado",
	"doctors":         "Doctor no encontrado",
	"users":           "Usuario no encontrado",
	"roles":           "Rol no encontrado",
	"floors":          "Planta no encontrada",
	"offices":         "Consultorio no encontrado",
	"bookings":        "Cita no encontrada",
	"histories":       "Historia clínica no encontrada",
	"chatbot/prompts": "Prompt no encontrado",
}

func notFound(c echo.Context, spec resourceSpec) error {
	msg := notFoundMessages[spec.path]
	if msg == "" {
		msg = "Recurso no encontrado"
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": msg})
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func fieldEquals(field string) func(doc, string) bool {
	return func(d doc, v string) bool {
		return strings.EqualFold(toString(d[field]), v)
	}
}

func ageAtLeast(d doc, v string) bool {
	min, err := strconv.Atoi(v)
	if err != nil {
		return true
	}
	age, ok := patientAge(d)
	return ok && age >= min
}

func ageAtMost(d doc, v string) bool {
	max, err := strconv.Atoi(v)
	if err != nil {
		return true
	}
	age, ok := patientAge(d)
	return ok && age <= max
}

func patientAge(d doc) (int, bool) {
	raw := toString(d["birthDate"])
	if raw == "" {
		return 0, false
	}
	birth, err := time.Parse("2006-01-02", raw)
	if err != nil {
		if birth, err = time.Parse(time.RFC3339, raw); err != nil {
			return 0, false
		}
	}
	now := time.Now()
	age := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

package sandbox

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var (
	firstNames = []string{
		"María", "Carlos", "Lucía", "Javier", "Sofía", "Diego", "Valentina",
		"Andrés", "Camila", "Miguel", "Isabella", "Fernando", "Daniela",
		"Ricardo", "Paula", "Sebastián", "Gabriela", "Alejandro", "Carmen", "Pablo",
	}
	lastNames = []string{
		"García", "Rodríguez", "Martínez", "López", "Hernández", "González",
		"Pérez", "Sánchez", "Ramírez", "Torres", "Flores", "Rivera",
		"Gómez", "Díaz", "Vargas", "Castro", "Ortiz", "Morales",
	}
	specialties = []string{
		"Cardiología", "Pediatría", "Dermatología", "Neurología",
		"Medicina General", "Ginecología", "Traumatología", "Oftalmología",
	}
	languages = [][]string{
		{"es"}, {"es", "en"}, {"es", "en", "pt"}, {"es", "fr"},
	}
	diagnoses = []string{
		"Hipertensión arterial", "Diabetes tipo 2", "Migraña crónica",
		"Gastritis", "Asma leve", "Lumbalgia", "Dermatitis atópica",
		"Ansiedad generalizada",
	}
	treatments = []string{
		"Losartán 50mg diario", "Metformina 850mg", "Reposo y fisioterapia",
		"Omeprazol 20mg en ayunas", "Salbutamol según necesidad",
		"Terapia cognitivo-conductual",
	}
	bookingReasons = []string{
		"Consulta general", "Control de rutina", "Seguimiento de tratamiento",
		"Primera consulta", "Revisión de estudios", "Chequeo anual",
	}
	bookingStatuses = []string{
		"scheduled", "confirmed", "completed", "cancelled", "no-show",
	}
	officeEquipment = [][]string{
		{"camilla", "tensiómetro"}, {"camilla", "ecógrafo"},
		{"camilla", "electrocardiógrafo", "desfibrilador"}, {"camilla"},
	}
)

// seeder populates the server's collections with deterministic synthetic
// data. The same seed always produces the same dataset, which keeps demos
// and tests reproducible.
type seeder struct {
	rng *rand.Rand
	now time.Time
}

func newSeeder(seed int64) *seeder {
	return &seeder{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *seeder) pick(list []string) string {
	return list[s.rng.Intn(len(list))]
}

func (s *seeder) id() string {
	var b [16]byte
	s.rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	u, _ := uuid.FromBytes(b[:])
	return u.String()
}

func (s *seeder) timestamp(daysBack int) string {
	d := s.rng.Intn(daysBack)
	return s.now.AddDate(0, 0, -d).Format(time.RFC3339)
}

func (s *seeder) seed(srv *Server) {
	roleIDs := s.seedRoles(srv)
	s.seedUsers(srv, roleIDs)
	patientIDs := s.seedPatients(srv)
	doctorIDs := s.seedDoctors(srv)
	floorIDs := s.seedFloors(srv)
	officeIDs := s.seedOffices(srv, floorIDs)
	s.seedBookings(srv, patientIDs, doctorIDs, officeIDs)
	s.seedHistories(srv, patientIDs, doctorIDs)
	s.seedPrompts(srv)
}

func (s *seeder) seedRoles(srv *Server) []string {
	roles := []struct {
		name        string
		description string
		permissions []string
	}{
		{"Administrador", "Acceso completo al sistema", []string{"patients:*", "doctors:*", "users:*", "roles:*", "settings:*"}},
		{"Recepcionista", "Gestión de pacientes y citas", []string{"patients:read", "patients:write", "bookings:*"}},
		{"Doctor", "Acceso a historias clínicas", []string{"patients:read", "histories:*", "bookings:read"}},
		{"Auditor", "Solo lectura", []string{"patients:read", "doctors:read", "bookings:read"}},
	}
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		id := s.id()
		ids = append(ids, id)
		srv.collections["roles"].insert(id, doc{
			"id":          id,
			"name":        r.name,
			"description": r.description,
			"permissions": r.permissions,
			"userCount":   0,
			"isActive":    true,
			"createdAt":   s.timestamp(400),
			"updatedAt":   s.timestamp(30),
		})
	}
	return ids
}

func (s *seeder) seedUsers(srv *Server, roleIDs []string) {
	admin := s.id()
	srv.collections["users"].insert(admin, doc{
		"id":          admin,
		"firstName":   "Admin",
		"lastName":    "Sistema",
		"email":       "admin@clinic.test",
		"password":    "admin",
		"roleId":      roleIDs[0],
		"roleName":    "Administrador",
		"isActive":    true,
		"lastLoginAt": s.timestamp(2),
		"createdAt":   s.timestamp(400),
		"updatedAt":   s.timestamp(30),
	})
	for i := 0; i < 5; i++ {
		id := s.id()
		first, last := s.pick(firstNames), s.pick(lastNames)
		roleIdx := 1 + s.rng.Intn(len(roleIDs)-1)
		roleName := map[int]string{1: "Recepcionista", 2: "Doctor", 3: "Auditor"}[roleIdx]
		srv.collections["users"].insert(id, doc{
			"id":          id,
			"firstName":   first,
			"lastName":    last,
			"email":       fmt.Sprintf("%s.%s%d@clinic.test", normalizeEmail(first), normalizeEmail(last), i),
			"password":    "changeme",
			"roleId":      roleIDs[roleIdx],
			"roleName":    roleName,
			"isActive":    i != 4,
			"lastLoginAt": s.timestamp(14),
			"createdAt":   s.timestamp(300),
			"updatedAt":   s.timestamp(30),
		})
	}
}

func (s *seeder) seedPatients(srv *Server) []string {
	ids := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		id := s.id()
		ids = append(ids, id)
		first, last := s.pick(firstNames), s.pick(lastNames)
		age := 5 + s.rng.Intn(80)
		birth := s.now.AddDate(-age, -s.rng.Intn(12), -s.rng.Intn(28))
		srv.collections["patients"].insert(id, doc{
			"id":          id,
			"firstName":   first,
			"lastName":    last,
			"fullName":    first + " " + last,
			"email":       fmt.Sprintf("%s.%s%d@example.com", normalizeEmail(first), normalizeEmail(last), i),
			"phone":       fmt.Sprintf("+34 6%08d", s.rng.Intn(100000000)),
			"documentId":  fmt.Sprintf("%08d%c", s.rng.Intn(100000000), 'A'+rune(s.rng.Intn(26))),
			"gender":      []string{"female", "male", "other"}[s.rng.Intn(3)],
			"birthDate":   birth.Format("2006-01-02"),
			"languages":   languages[s.rng.Intn(len(languages))],
			"isActive":    i%7 != 6,
			"lastVisitAt": s.timestamp(90),
			"createdAt":   s.timestamp(500),
			"updatedAt":   s.timestamp(60),
		})
	}
	return ids
}

func (s *seeder) seedDoctors(srv *Server) []string {
	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		id := s.id()
		ids = append(ids, id)
		first, last := s.pick(firstNames), s.pick(lastNames)
		srv.collections["doctors"].insert(id, doc{
			"id":            id,
			"firstName":     first,
			"lastName":      last,
			"fullName":      "Dr. " + first + " " + last,
			"email":         fmt.Sprintf("dr.%s%d@clinic.test", normalizeEmail(last), i),
			"phone":         fmt.Sprintf("+34 6%08d", s.rng.Intn(100000000)),
			"specialty":     specialties[i%len(specialties)],
			"licenseNumber": fmt.Sprintf("COL-%05d", s.rng.Intn(100000)),
			"languages":     languages[s.rng.Intn(len(languages))],
			"isActive":      i != 7,
			"createdAt":     s.timestamp(500),
			"updatedAt":     s.timestamp(60),
		})
	}
	return ids
}

func (s *seeder) seedFloors(srv *Server) []string {
	names := []string{"Planta Baja", "Primera Planta", "Segunda Planta"}
	ids := make([]string, 0, len(names))
	for i, name := range names {
		id := s.id()
		ids = append(ids, id)
		srv.collections["floors"].insert(id, doc{
			"id":          id,
			"name":        name,
			"number":      i,
			"description": fmt.Sprintf("Consultorios de %s", name),
			"officeCount": 3,
			"isActive":    true,
			"createdAt":   s.timestamp(500),
			"updatedAt":   s.timestamp(120),
		})
	}
	return ids
}

func (s *seeder) seedOffices(srv *Server, floorIDs []string) []string {
	ids := make([]string, 0, 9)
	for i := 0; i < 9; i++ {
		id := s.id()
		ids = append(ids, id)
		floor := floorIDs[i/3]
		srv.collections["offices"].insert(id, doc{
			"id":        id,
			"name":      fmt.Sprintf("Consultorio %d0%d", i/3, i%3+1),
			"number":    fmt.Sprintf("%d0%d", i/3, i%3+1),
			"floorId":   floor,
			"capacity":  2 + s.rng.Intn(3),
			"equipment": officeEquipment[s.rng.Intn(len(officeEquipment))],
			"isActive":  i != 8,
			"createdAt": s.timestamp(500),
			"updatedAt": s.timestamp(120),
		})
	}
	return ids
}

func (s *seeder) seedBookings(srv *Server, patientIDs, doctorIDs, officeIDs []string) {
	for i := 0; i < 30; i++ {
		id := s.id()
		start := s.now.AddDate(0, 0, s.rng.Intn(30)-15).Add(time.Duration(8+s.rng.Intn(9)) * time.Hour)
		srv.collections["bookings"].insert(id, doc{
			"id":        id,
			"patientId": patientIDs[s.rng.Intn(len(patientIDs))],
			"doctorId":  doctorIDs[s.rng.Intn(len(doctorIDs))],
			"officeId":  officeIDs[s.rng.Intn(len(officeIDs))],
			"status":    bookingStatuses[s.rng.Intn(len(bookingStatuses))],
			"reason":    s.pick(bookingReasons),
			"startsAt":  start.Format(time.RFC3339),
			"endsAt":    start.Add(30 * time.Minute).Format(time.RFC3339),
			"isActive":  true,
			"createdAt": s.timestamp(60),
			"updatedAt": s.timestamp(10),
		})
	}
}

func (s *seeder) seedHistories(srv *Server, patientIDs, doctorIDs []string) {
	for i := 0; i < 40; i++ {
		id := s.id()
		srv.collections["histories"].insert(id, doc{
			"id":         id,
			"patientId":  patientIDs[s.rng.Intn(len(patientIDs))],
			"doctorId":   doctorIDs[s.rng.Intn(len(doctorIDs))],
			"diagnosis":  s.pick(diagnoses),
			"treatment":  s.pick(treatments),
			"notes":      "Paciente estable, control en 30 días.",
			"recordedAt": s.timestamp(365),
			"isActive":   true,
			"createdAt":  s.timestamp(365),
			"updatedAt":  s.timestamp(30),
		})
	}
}

func (s *seeder) seedPrompts(srv *Server) {
	prompts := []struct {
		name    string
		content string
		active  bool
	}{
		{"Triaje inicial", "Eres un asistente de triaje. Pregunta por los síntomas principales y su duración.", true},
		{"Recordatorio de citas", "Recuerda al paciente su próxima cita y ofrece reprogramar.", false},
		{"Preparación de estudios", "Explica la preparación necesaria para los estudios indicados.", false},
	}
	for i, p := range prompts {
		id := s.id()
		srv.collections["chatbot/prompts"].insert(id, doc{
			"id":          id,
			"name":        p.name,
			"content":     p.content,
			"model":       "gpt-4o-mini",
			"temperature": 0.2,
			"version":     i + 1,
			"isActive":    p.active,
			"createdAt":   s.timestamp(200),
			"updatedAt":   s.timestamp(20),
		})
	}
}

var emailReplacer = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ñ': 'n', 'ü': 'u',
}

func normalizeEmail(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if repl, ok := emailReplacer[r]; ok {
			r = repl
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	return string(out)
}

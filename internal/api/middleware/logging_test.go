package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livechat-backend/internal/jwt"
)

func TestStatusRecorder(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.status, http.StatusTeapot)
	}

	n, err := rec.Write([]byte("body"))
	if err != nil || n != 4 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if rec.bytes != 4 {
		t.Errorf("bytes = %d, want 4", rec.bytes)
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	called := false
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

	if !called {
		t.Fatal("handler not invoked")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
}

func TestValidateStaffJWT(t *testing.T) {
	old := jwt.RoleSecrets[jwt.RoleStaff]
	jwt.RoleSecrets[jwt.RoleStaff] = "test-secret"
	t.Cleanup(func() { jwt.RoleSecrets[jwt.RoleStaff] = old })

	var gotStaff *jwt.Staff
	handler := ValidateStaffJWT(func(w http.ResponseWriter, r *http.Request) {
		gotStaff, _ = StaffFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	token, err := jwt.CreateToken(jwt.RoleStaff, jwt.Staff{ID: "staff-1", TenantID: "tenant-1"}, time.Minute)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	r := httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", w.Code)
	}
	if gotStaff == nil || gotStaff.TenantID != "tenant-1" {
		t.Errorf("staff = %+v, want tenant-1 principal", gotStaff)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}

	h := Chain(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, mk("outer"), mk("inner"))

	h(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := []string{"outer", "inner", "handler"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

package routeguard

import (
	"testing"

	"github.com/dr-omr/tibrah-gateway/internal/config"
)

func testGuard() *Guard {
	return New(config.RouteTables{
		AdminOnly:         []string{"/admin"},
		AuthenticatedOnly: []string{"/account", "/orders", "/health-log"},
		AuthPages:         []string{"/login", "/register"},
		Excluded:          []string{"/assets", "/static", "/favicon.ico"},
	})
}

func TestGuard_Decide(t *testing.T) {
	userArtifact := Artifact{Email: "user@example.com", Role: "user"}
	adminArtifact := Artifact{Email: "admin@example.com", Role: "admin"}

	tests := []struct {
		name         string
		path         string
		artifact     Artifact
		wantAction   Action
		wantTarget   string
		wantRedirect string // expected "redirect" query value
		wantReason   string // expected "reason" query value
	}{
		{
			name:         "admin path without artifact redirects with reason",
			path:         "/admin",
			wantAction:   ActionRedirect,
			wantTarget:   "/login",
			wantRedirect: "/admin",
			wantReason:   "admin",
		},
		{
			name:         "admin subpath without artifact redirects with reason",
			path:         "/admin/users",
			wantAction:   ActionRedirect,
			wantTarget:   "/login",
			wantRedirect: "/admin/users",
			wantReason:   "admin",
		},
		{
			name:         "admin path with user role redirects with reason",
			path:         "/admin",
			artifact:     userArtifact,
			wantAction:   ActionRedirect,
			wantTarget:   "/login",
			wantRedirect: "/admin",
			wantReason:   "admin",
		},
		{
			name:       "admin path with admin role allowed",
			path:       "/admin",
			artifact:   adminArtifact,
			wantAction: ActionAllow,
		},
		{
			name:         "authenticated path without artifact redirects without reason",
			path:         "/account",
			wantAction:   ActionRedirect,
			wantTarget:   "/login",
			wantRedirect: "/account",
		},
		{
			name:       "authenticated path with user role allowed",
			path:       "/account",
			artifact:   userArtifact,
			wantAction: ActionAllow,
		},
		{
			name:       "authenticated subpath with user role allowed",
			path:       "/health-log/2025-06",
			artifact:   userArtifact,
			wantAction: ActionAllow,
		},
		{
			name:       "login page with authenticated artifact redirects to root",
			path:       "/login",
			artifact:   userArtifact,
			wantAction: ActionRedirect,
			wantTarget: "/",
		},
		{
			name:       "register page with admin artifact redirects to root",
			path:       "/register",
			artifact:   adminArtifact,
			wantAction: ActionRedirect,
			wantTarget: "/",
		},
		{
			name:       "login page without artifact allowed",
			path:       "/login",
			wantAction: ActionAllow,
		},
		{
			name:       "public path without artifact allowed",
			path:       "/recipes/anything",
			wantAction: ActionAllow,
		},
		{
			name:       "prefix match requires a path boundary",
			path:       "/administrivia",
			wantAction: ActionAllow,
		},
		{
			name:       "artifact with unknown role treated as unauthenticated",
			path:       "/account",
			artifact:   Artifact{Email: "x@example.com", Role: "superuser"},
			wantAction: ActionRedirect,
			wantTarget: "/login",
		},
		{
			name:       "artifact without email treated as unauthenticated",
			path:       "/account",
			artifact:   Artifact{Role: "user"},
			wantAction: ActionRedirect,
			wantTarget: "/login",
		},
	}

	guard := testGuard()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := guard.Decide(tt.path, tt.artifact)

			if got.Action != tt.wantAction {
				t.Fatalf("Decide(%q).Action = %v, want %v", tt.path, got.Action, tt.wantAction)
			}
			if tt.wantAction != ActionRedirect {
				return
			}
			if got.Target != tt.wantTarget {
				t.Errorf("Decide(%q).Target = %q, want %q", tt.path, got.Target, tt.wantTarget)
			}
			if tt.wantRedirect != "" && got.Query.Get("redirect") != tt.wantRedirect {
				t.Errorf("redirect query = %q, want %q", got.Query.Get("redirect"), tt.wantRedirect)
			}
			if got.Query.Get("reason") != tt.wantReason {
				t.Errorf("reason query = %q, want %q", got.Query.Get("reason"), tt.wantReason)
			}
		})
	}
}

func TestParseArtifact(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Artifact
	}{
		{
			name: "valid user artifact",
			raw:  `{"email":"user@example.com","role":"user"}`,
			want: Artifact{Email: "user@example.com", Role: "user"},
		},
		{
			name: "valid admin artifact",
			raw:  `{"email":"admin@example.com","role":"admin"}`,
			want: Artifact{Email: "admin@example.com", Role: "admin"},
		},
		{
			name: "malformed json falls back to unauthenticated",
			raw:  `{"email":`,
			want: Artifact{},
		},
		{
			name: "empty input",
			raw:  "",
			want: Artifact{},
		},
		{
			name: "unexpected fields ignored",
			raw:  `{"email":"a@b.c","role":"user","exp":12345}`,
			want: Artifact{Email: "a@b.c", Role: "user"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseArtifact([]byte(tt.raw)); got != tt.want {
				t.Errorf("ParseArtifact(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGuard_Excluded(t *testing.T) {
	guard := testGuard()

	for path, want := range map[string]bool{
		"/assets/app.js":  true,
		"/static/app.css": true,
		"/favicon.ico":    true,
		"/admin":          false,
		"/":               false,
	} {
		if got := guard.Excluded(path); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", path, got, want)
		}
	}
}

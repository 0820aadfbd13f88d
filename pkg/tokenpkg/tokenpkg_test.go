package tokenpkg

import (
	"testing"

	"github.com/go-petr/bankapp/pkg/randompkg"
)

func TestNew(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	testCases := []struct {
		name      string
		tokenType string
		key       string
		wantErr   bool
	}{
		{name: "Paseto", tokenType: TypePaseto, key: key},
		{name: "DefaultPaseto", tokenType: "", key: key},
		{name: "JWT", tokenType: TypeJWT, key: key},
		{name: "ShortPasetoKey", tokenType: TypePaseto, key: "short", wantErr: true},
		{name: "ShortJWTKey", tokenType: TypeJWT, key: "short", wantErr: true},
		{name: "Unsupported", tokenType: "macaroon", key: key, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			maker, err := New(tc.tokenType, tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("New(%q, key) returned no error", tc.tokenType)
				}

				return
			}

			if err != nil {
				t.Fatalf("New(%q, key) returned error: %v", tc.tokenType, err)
			}

			if maker == nil {
				t.Fatalf("New(%q, key) returned nil maker", tc.tokenType)
			}
		})
	}
}

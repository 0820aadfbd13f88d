package tokenpkg

import "fmt"

// Supported token types.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// New returns the token maker of the given type.
func New(tokenType, symmetricKey string) (Maker, error) {
	switch tokenType {
	case TypePaseto, "":
		maker, err := NewPasetoMaker(symmetricKey)
		if err != nil {
			return nil, err
		}

		return maker, nil
	case TypeJWT:
		maker, err := NewJWTMaker(symmetricKey)
		if err != nil {
			return nil, err
		}

		return maker, nil
	}

	return nil, fmt.Errorf("unsupported token type %q", tokenType)
}

package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var validate *validator.Validate

var translator ut.Translator

func init() {
	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)
}

// CheckField validates val against its struct tags, reporting the
// first violation with a translated message and the offending field,
// so handlers can render field-level validation responses.
func CheckField(val any) (field string, err error) {
	if verr := validate.Struct(val); verr != nil {
		verrors, ok := verr.(validator.ValidationErrors)
		if !ok || len(verrors) < 1 {
			return "", verr
		}

		first := verrors[0]
		return strings.ToLower(first.Field()), errors.New(first.Translate(translator))
	}

	return "", nil
}

func GenerateID() string {
	return uuid.NewString()
}

func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}

package handlers

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var translator ut.Translator

// init teaches gin's validator to report body field names and English messages.
func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	translator, _ = uni.GetTranslator("en")

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(bodyFieldName)

	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		panic(err)
	}
}

// bodyFieldName is the json name of a request field, or its Go name when untagged.
func bodyFieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

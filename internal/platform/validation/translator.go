// Package validation はginのバインディングエラーをフィールドごとのメッセージに変換します。
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog/log"
)

var (
	once  sync.Once
	trans ut.Translator
)

// Register はginの検証エンジンに英語の翻訳とフィールド名の取得方法を登録します。
// 検証エンジンは構造体ごとにフィールド名をキャッシュするため、最初のバインドより前
// （ルーター構築時）に呼び出す必要があります。複数回呼んでも登録は一度だけ行われます。
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Warn().Msg("gin validator engine is not go-playground/validator; translations disabled")
			return
		}
		v.RegisterTagNameFunc(fieldName)

		locale := en.New()
		trans, _ = ut.New(locale, locale).GetTranslator("en")
		if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
			log.Error().Err(err).Msg("failed to register validator translations")
			trans = nil
		}
	})
}

// fieldName はエラーのフィールド名として form タグ、なければ json タグを使います。
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			continue
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// FieldErrors はバインディングエラーを「フィールド名 → メッセージ」に変換します。
// 検証エラーでない場合（JSONの構文エラーなど）は "body" キーにまとめます。
// Register 前のエラーは翻訳されません。
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, ok := out[fe.Field()]; ok {
				continue
			}
			if trans != nil {
				out[fe.Field()] = fe.Translate(trans)
			} else {
				out[fe.Field()] = fe.Error()
			}
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: "invalid value type"}
	}
	return map[string]string{"body": "malformed request body"}
}

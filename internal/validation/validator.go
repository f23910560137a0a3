package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"rental-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const MsgReturnBeforeIssue = "Дата возврата не может быть раньше даты выдачи."

var (
	reFullName = regexp.MustCompile(`^[А-Яа-яЁё\- ]+$`)
	rePhone    = regexp.MustCompile(`^\+7\d{10}$`)
	rePassport = regexp.MustCompile(`^\d{6,10}$`)
	reDL       = regexp.MustCompile(`^[0-9A-Za-zА-Яа-я]{6,20}$`)
	reVIN      = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	rePlate    = regexp.MustCompile(`^[АВЕКМНОРСТУХ]\d{3}[АВЕКМНОРСТУХ]{2}\s?\d{2,3}$`)
)

// Format rules, keyed by their struct tag.
var rules = map[string]struct {
	re  *regexp.Regexp
	msg string
}{
	"fio":       {reFullName, "ФИО может содержать только русские буквы, пробелы и дефисы."},
	"phone_ru":  {rePhone, "Телефон должен быть в формате +7XXXXXXXXXX (10 цифр)."},
	"passport":  {rePassport, "Паспорт должен содержать от 6 до 10 цифр."},
	"dl_number": {reDL, "Номер ВУ должен содержать от 6 до 20 символов (буквы/цифры)."},
	"vin":       {reVIN, "VIN должен состоять из 17 символов (латинские буквы и цифры, без I, O, Q)."},
	"plate_ru":  {rePlate, "Госномер должен быть вида А123БВ 77 / А123БВ 777 (только разрешённые буквы)."},
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})

		for tag, rule := range rules {
			re := rule.re
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return re.MatchString(fl.Field().String())
			})
		}
		_ = v.RegisterValidation("payment", func(fl validator.FieldLevel) bool {
			return ValidPayment(fl.Field().String())
		})
		_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := models.ParseDate(fl.Field().String())
			return err == nil
		})

		validate = v
	})
	return validate
}

// Struct runs the struct tag rules and returns the field errors, never nil.
func Struct(s any) Errors {
	out := Errors{}
	err := instance().Struct(s)
	if err == nil {
		return out
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out.Add(FormField, err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	if rule, ok := rules[fe.Tag()]; ok {
		return rule.msg
	}
	switch fe.Tag() {
	case "required":
		return "Обязательное поле."
	case "email":
		return "Введите правильный адрес электронной почты."
	case "payment":
		return "Недопустимый способ оплаты."
	case "date":
		return "Введите правильную дату."
	case "gt":
		return fmt.Sprintf("Значение должно быть больше %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Значение должно быть не меньше %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Значение должно быть не больше %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Не более %s символов.", fe.Param())
	case "min":
		return fmt.Sprintf("Не менее %s символов.", fe.Param())
	default:
		return "Недопустимое значение."
	}
}

func ValidFullName(s string) bool { return reFullName.MatchString(s) }
func ValidPhone(s string) bool    { return rePhone.MatchString(s) }
func ValidPassport(s string) bool { return rePassport.MatchString(s) }
func ValidDL(s string) bool       { return reDL.MatchString(s) }
func ValidVIN(s string) bool      { return reVIN.MatchString(s) }
func ValidPlate(s string) bool    { return rePlate.MatchString(s) }

func ValidPayment(s string) bool {
	for _, p := range models.PaymentMethods {
		if s == p {
			return true
		}
	}
	return false
}

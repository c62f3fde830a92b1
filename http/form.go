package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"riskgate/gateway"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// InvalidBMIWarning 表单中BMI无法解析时的提示
const InvalidBMIWarning = "Invalid BMI value. Using median value."

// supportedLanguages 概率百分比的本地化语言，第一个为默认
var supportedLanguages = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Chinese,
}

// FormValues 表单字段原始值
type FormValues struct {
	Gender         string
	Age            string
	Hypertension   string
	HeartDisease   string
	SmokingHistory string
	BMI            string
	HbA1c          string
	Glucose        string
}

// defaultFormValues 与原始表单的初始值一致
func defaultFormValues() FormValues {
	return FormValues{
		Gender:         "Male",
		Age:            "45",
		Hypertension:   "0",
		HeartDisease:   "0",
		SmokingHistory: "never",
		HbA1c:          "5.7",
		Glucose:        "100",
	}
}

// Outcome 表单提交后的展示结果
type Outcome struct {
	Warning     string
	Error       string
	Diagnosis   string
	Percent     string
	Probability float64
	RiskLevel   gateway.RiskLevel
	Advice      string
}

type formPage struct {
	Lang    string
	Form    FormValues
	Genders []string
	Flags   []string
	Smoking []string
	Outcome *Outcome
}

// Record 把表单值转换为预测记录。BMI非数字时按缺失处理并返回警告
func (f FormValues) Record() (gateway.Record, string) {
	record := gateway.Record{
		Gender:         gateway.Text(f.Gender),
		Age:            gateway.Text(f.Age),
		Hypertension:   gateway.Text(f.Hypertension),
		HeartDisease:   gateway.Text(f.HeartDisease),
		SmokingHistory: gateway.Text(f.SmokingHistory),
		HbA1c:          gateway.Text(f.HbA1c),
		Glucose:        gateway.Text(f.Glucose),
		BMI:            gateway.Null(),
	}

	var warning string
	if bmi := strings.TrimSpace(f.BMI); bmi != "" {
		// 溢出的数值保留为±Inf，交由范围校验拒绝
		if v, err := strconv.ParseFloat(bmi, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			record.BMI = gateway.Number(v)
		} else {
			warning = InvalidBMIWarning
		}
	}
	return record, warning
}

// NewOutcome 按请求语言格式化预测结果
func NewOutcome(result gateway.Result, warning string, printer *message.Printer) *Outcome {
	outcome := &Outcome{Warning: warning}
	if !result.OK() {
		outcome.Error = result.Error
		return outcome
	}
	outcome.Diagnosis = result.Diagnosis()
	outcome.Percent = printer.Sprintf("%.2f%%", result.Probability*100)
	outcome.Probability = result.Probability
	outcome.RiskLevel = result.RiskLevel
	outcome.Advice = result.RiskLevel.Advice()
	return outcome
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, defaultFormValues(), nil)
}

func (h *Handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	values := FormValues{
		Gender:         r.PostForm.Get("gender"),
		Age:            r.PostForm.Get("age"),
		Hypertension:   r.PostForm.Get("hypertension"),
		HeartDisease:   r.PostForm.Get("heart_disease"),
		SmokingHistory: r.PostForm.Get("smoking_history"),
		BMI:            r.PostForm.Get("bmi"),
		HbA1c:          r.PostForm.Get("HbA1c_level"),
		Glucose:        r.PostForm.Get("blood_glucose_level"),
	}
	record, warning := values.Record()
	result := h.predict(record)

	tag := h.language(r)
	h.renderForm(w, r, values, NewOutcome(result, warning, message.NewPrinter(tag)))
}

// language 根据Accept-Language选择语言
func (h *Handler) language(r *http.Request) language.Tag {
	_, index := language.MatchStrings(h.languages, r.Header.Get("Accept-Language"))
	return supportedLanguages[index]
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, values FormValues, outcome *Outcome) {
	page := formPage{
		Lang:    h.language(r).String(),
		Form:    values,
		Genders: []string{"Male", "Female"},
		Flags:   []string{"0", "1"},
		Smoking: []string{"never", "current", "former", "ever", "not current"},
		Outcome: outcome,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, page); err != nil {
		h.logger.Error("render form failed", zap.Error(err))
	}
}

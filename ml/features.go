package ml

// FeatureCount is the width of every vector handed to a Classifier.
const FeatureCount = 8

const (
	IdxGender = iota
	IdxAge
	IdxHypertension
	IdxHeartDisease
	IdxSmokingHistory
	IdxBMI
	IdxHbA1c
	IdxGlucose
)

// PatientFeatures is the resolved, encoded form of one patient record.
type PatientFeatures struct {
	Gender         int
	Age            float64
	Hypertension   int
	HeartDisease   int
	SmokingHistory int
	BMI            float64
	HbA1c          float64
	Glucose        float64
}

func FeatureVector(f PatientFeatures) []float64 {
	return []float64{
		float64(f.Gender),
		f.Age,
		float64(f.Hypertension),
		float64(f.HeartDisease),
		float64(f.SmokingHistory),
		f.BMI,
		f.HbA1c,
		f.Glucose,
	}
}

func FeatureNames() []string {
	return []string{
		"gender",
		"age",
		"hypertension",
		"heart_disease",
		"smoking_history",
		"bmi",
		"HbA1c_level",
		"blood_glucose_level",
	}
}

// ContinuousIndices are the vector positions the scaler was fitted on, in
// the scaler's column order.
func ContinuousIndices() []int {
	return []int{IdxAge, IdxBMI, IdxHbA1c, IdxGlucose}
}

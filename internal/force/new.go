package force

// New constructs the Model for kind. Unknown kinds fall back to
// Helbing-Buzna.
func New(kind Kind, params Params) Model {
	switch kind {
	case HelbingJohansson:
		return NewHelbingJohansson(params)
	case Moussaid:
		return NewMoussaid(params)
	default:
		return NewHelbingBuzna(params)
	}
}

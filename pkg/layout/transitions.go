package layout

// Effect is what one tag edge does to the typographic state.
type Effect struct {
	Role      string  // font role to activate; "" keeps the current font
	Weight    Weight  // 0 keeps the current weight
	SetSize   bool    // size = base + SizeDelta
	SizeDelta float64 // points
	Reanchor  bool    // keep the baseline steady across a font change
	Flush     bool    // flush the line and return to the left margin
	Advance   int     // line steps added to the cursor after a flush
}

// Transition pairs the effects of an opening and a closing tag.
type Transition struct {
	Open  Effect
	Close Effect
}

// resetEffect applies to both edges of any tag missing from the table.
var resetEffect = Effect{Role: RoleRegular, Weight: WeightNormal, SetSize: true}

var transitions = map[string]Transition{
	"b": {
		Open:  Effect{Weight: WeightBold},
		Close: Effect{Weight: WeightNormal},
	},
	"strong": {
		Open:  Effect{Weight: WeightBold},
		Close: Effect{Weight: WeightNormal},
	},
	"i": {
		Open:  Effect{Role: RoleItalic, Reanchor: true},
		Close: Effect{Role: RoleRegular, Reanchor: true},
	},
	"em": {
		Open:  Effect{Role: RoleItalic, Reanchor: true},
		Close: Effect{Role: RoleRegular, Reanchor: true},
	},
	"h1": {
		Open:  Effect{SetSize: true, SizeDelta: 8, Flush: true, Advance: 2},
		Close: Effect{SetSize: true, Flush: true, Advance: 1},
	},
	"big": {
		Open:  Effect{SetSize: true, SizeDelta: 4},
		Close: Effect{SetSize: true},
	},
	"small": {
		Open:  Effect{SetSize: true, SizeDelta: -2},
		Close: Effect{SetSize: true},
	},
	"p": {
		Open:  Effect{SetSize: true, Flush: true, Advance: 1},
		Close: Effect{SetSize: true, Flush: true, Advance: 1},
	},
}

// Transitions returns a copy of the tag table.
func Transitions() map[string]Transition {
	out := make(map[string]Transition, len(transitions))
	for k, v := range transitions {
		out[k] = v
	}
	return out
}

// EffectFor returns the effect of a tag edge. Tags missing from the table
// reset font, weight and size.
func EffectFor(name string, closing bool) Effect {
	tr, ok := transitions[name]
	if !ok {
		return resetEffect
	}
	if closing {
		return tr.Close
	}
	return tr.Open
}

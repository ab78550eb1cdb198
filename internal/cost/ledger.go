package cost

// Charge is the priced usage of one streaming call.
type Charge struct {
	Model string
	Usage Usage
	Cost  float64
}

// Ledger accumulates charges for one top-level turn. The zero value is ready
// to use. A Ledger is not safe for concurrent use.
type Ledger struct {
	charges []Charge
}

// Record prices u with t and appends the charge.
func (l *Ledger) Record(t Table, model string, u Usage) Charge {
	c := Charge{Model: model, Usage: u, Cost: t.Cost(model, u)}
	l.charges = append(l.charges, c)
	return c
}

// Total is the sum of every recorded charge.
func (l *Ledger) Total() float64 {
	var sum float64
	for _, c := range l.charges {
		sum += c.Cost
	}
	return sum
}

// Usage is the summed token usage.
func (l *Ledger) Usage() Usage {
	var u Usage
	for _, c := range l.charges {
		u = u.Add(c.Usage)
	}
	return u
}

// Charges returns a copy of the recorded charges in call order.
func (l *Ledger) Charges() []Charge {
	return append([]Charge(nil), l.charges...)
}

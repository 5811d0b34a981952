package series

// Subtract builds a derived series a-b over the dates both inputs share,
// before any calendar alignment. Dashboard-level factors (term spreads,
// credit spread) are computed this way so their latest value and change
// lookbacks reflect actual publication dates, not forward-filled ones.
func Subtract(name string, a, b *Series) *Series {
	if a.Empty() || b.Empty() {
		return &Series{Name: name}
	}

	points := make([]Point, 0, len(a.Points))
	i, j := 0, 0
	for i < len(a.Points) && j < len(b.Points) {
		ad, bd := a.Points[i].Date, b.Points[j].Date
		switch {
		case ad.Before(bd):
			i++
		case bd.Before(ad):
			j++
		default:
			points = append(points, Point{Date: ad, Value: a.Points[i].Value - b.Points[j].Value})
			i++
			j++
		}
	}
	return &Series{Name: name, Points: points}
}

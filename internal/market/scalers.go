package market

// SlotAllocator splits the available money evenly between the free trade
// slots and scales the share by Multiplier.
type SlotAllocator struct {
	Slots      int
	Multiplier float64
}

func (s *SlotAllocator) GetSize(money float64, open int) float64 {
	free := s.Slots - open
	if free <= 0 || money <= 0 {
		return 0
	}

	return money / float64(free) * s.Multiplier
}

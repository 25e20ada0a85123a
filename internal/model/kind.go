package model

// EntityKind identifies one POS entity collection. The string value doubles as
// the collection segment used by the remote store and as the cache key part.
type EntityKind string

const (
	KindBill         EntityKind = "bills"
	KindTillScreen   EntityKind = "tillScreens"
	KindPaymentType  EntityKind = "paymentTypes"
	KindFloorPlan    EntityKind = "floorPlans"
	KindTable        EntityKind = "tables"
	KindDiscount     EntityKind = "discounts"
	KindPromotion    EntityKind = "promotions"
	KindCorrection   EntityKind = "corrections"
	KindBagCheckItem EntityKind = "bagCheckItems"
	KindLocation     EntityKind = "locations"
	KindDevice       EntityKind = "devices"
	KindTicket       EntityKind = "tickets"
	KindTicketSale   EntityKind = "ticketSales"
	KindGroup        EntityKind = "groups"
	KindCourse       EntityKind = "courses"
)

// CriticalKinds are loaded (and awaited) before the snapshot is considered
// usable. Everything else is loaded in the background phase.
func CriticalKinds() []EntityKind {
	return []EntityKind{KindBill, KindPaymentType, KindTable}
}

// BackgroundKinds are loaded opportunistically after the critical phase.
func BackgroundKinds() []EntityKind {
	return []EntityKind{
		KindTillScreen, KindFloorPlan, KindDiscount, KindPromotion,
		KindCorrection, KindBagCheckItem, KindLocation, KindDevice,
		KindTicket, KindTicketSale, KindGroup, KindCourse,
	}
}

// AllKinds returns critical kinds first, background kinds after.
func AllKinds() []EntityKind {
	return append(CriticalKinds(), BackgroundKinds()...)
}

// ValidKind reports whether s names a known entity kind.
func ValidKind(s string) bool {
	for _, k := range AllKinds() {
		if string(k) == s {
			return true
		}
	}
	return false
}

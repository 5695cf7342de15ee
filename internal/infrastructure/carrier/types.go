package carrier

// Wire types for the Delhivery panel API.

// Shipment creation

type delhiveryShipment struct {
	Name         string `json:"name"`
	Add          string `json:"add"`
	Pin          string `json:"pin"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Order        string `json:"order"`
	PaymentMode  string `json:"payment_mode"`
	ProductsDesc string `json:"products_desc"`
	Quantity     int    `json:"quantity"`
	TotalAmount  string `json:"total_amount"`

	ReturnName    string `json:"return_name,omitempty"`
	ReturnAdd     string `json:"return_add,omitempty"`
	ReturnPin     string `json:"return_pin,omitempty"`
	ReturnCity    string `json:"return_city,omitempty"`
	ReturnState   string `json:"return_state,omitempty"`
	ReturnCountry string `json:"return_country,omitempty"`
	ReturnPhone   string `json:"return_phone,omitempty"`

	// Item collected from the customer on a replacement delivery
	ExchangeDesc string `json:"products_to_be_collected,omitempty"`
}

type delhiveryPickupLocation struct {
	Name string `json:"name"`
}

type delhiveryCreatePayload struct {
	Shipments      []delhiveryShipment     `json:"shipments"`
	PickupLocation delhiveryPickupLocation `json:"pickup_location"`
}

type delhiveryPackage struct {
	Waybill string   `json:"waybill"`
	RefNum  string   `json:"refnum"`
	Status  string   `json:"status"`
	Remarks []string `json:"remarks"`
}

type delhiveryCreateResponse struct {
	Success  bool               `json:"success"`
	Packages []delhiveryPackage `json:"packages"`
	Rmk      string             `json:"rmk"`
	Error    string             `json:"error"`
}

// Tracking

// delhiveryScan tolerates both shapes the panel emits: fields directly on
// the scan entry, or nested one level under ScanDetail.
type delhiveryScan struct {
	Scan          string               `json:"Scan"`
	ScanDateTime  string               `json:"ScanDateTime"`
	ScannedDate   string               `json:"ScannedDate"`
	Instructions  string               `json:"Instructions"`
	StatusDetails string               `json:"StatusDetails"`
	ScanDetail    *delhiveryScanDetail `json:"ScanDetail,omitempty"`
}

type delhiveryScanDetail struct {
	Scan          string `json:"Scan"`
	ScanDateTime  string `json:"ScanDateTime"`
	ScannedDate   string `json:"ScannedDate"`
	Instructions  string `json:"Instructions"`
	StatusDetails string `json:"StatusDetails"`
}

type delhiveryShipmentStatus struct {
	Status         string `json:"Status"`
	StatusDateTime string `json:"StatusDateTime"`
	Instructions   string `json:"Instructions"`
}

type delhiveryTrackedShipment struct {
	AWB    string                  `json:"AWB"`
	Status delhiveryShipmentStatus `json:"Status"`
	Scans  []delhiveryScan         `json:"Scans"`
}

type delhiveryShipmentData struct {
	Shipment delhiveryTrackedShipment `json:"Shipment"`
}

type delhiveryTrackResponse struct {
	ShipmentData []delhiveryShipmentData `json:"ShipmentData"`
	Error        string                  `json:"Error"`
}

package ioformat

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/YJFKD/Food-delivery-simulator/internal/apperrors"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
)

// NodeJSON is the wire shape of a Node at the dispatcher process
// boundary (spec.md §6).
type NodeJSON struct {
	LocationID        string   `json:"location_id"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	DeliveryOrderList []string `json:"delivery_order_list"`
	PickupOrderList   []string `json:"pickup_order_list"`
	ArriveTime        int64    `json:"arrive_time"`
	LeaveTime         int64    `json:"leave_time"`
}

func nodeToJSON(n domain.Node) NodeJSON {
	return NodeJSON{
		LocationID:        n.LocationID,
		Lat:               n.Lat,
		Lng:               n.Lng,
		DeliveryOrderList: n.DeliveryOrders,
		PickupOrderList:   n.PickupOrders,
		ArriveTime:        n.ArriveTime,
		LeaveTime:         n.LeaveTime,
	}
}

func nodeFromJSON(n NodeJSON) domain.Node {
	return domain.Node{
		LocationID:     n.LocationID,
		Lat:            n.Lat,
		Lng:            n.Lng,
		DeliveryOrders: n.DeliveryOrderList,
		PickupOrders:   n.PickupOrderList,
		ArriveTime:     n.ArriveTime,
		LeaveTime:      n.LeaveTime,
	}
}

// DriverJSON is the wire shape of driver_input_info.json entries.
type DriverJSON struct {
	ID                          string    `json:"id"`
	OperationTime               int64     `json:"operation_time"`
	Capacity                    int       `json:"capacity"`
	GPSID                       string    `json:"gps_id"`
	UpdateTime                  int64     `json:"update_time"`
	CurrentLocationID           string    `json:"current_location_id"`
	ArriveTimeAtCurrentLocation int64     `json:"arrive_time_at_current_location"`
	LeaveTimeAtCurrentLocation  int64     `json:"leave_time_at_current_location"`
	CarryingOrders              []string  `json:"carrying_orders"`
	Destination                 *NodeJSON `json:"destination"`
}

// OrderJSON is the wire shape of unallocated_orders.json /
// ongoing_orders.json entries.
type OrderJSON struct {
	OrderID                 string `json:"order_id"`
	PickupID                string `json:"pickup_id"`
	DeliveryID               string `json:"delivery_id"`
	Demand                  int    `json:"demand"`
	CreationTime            int64  `json:"creation_time"`
	CommittedCompletionTime int64  `json:"committed_completion_time"`
	LoadTime                int64  `json:"load_time"`
	UnloadTime              int64  `json:"unload_time"`
	DeliveryState           int    `json:"delivery_state"`
}

func orderToJSON(o *domain.Order) OrderJSON {
	return OrderJSON{
		OrderID:                 o.ID,
		PickupID:                o.PickupLocationID,
		DeliveryID:              o.DeliveryLocationID,
		Demand:                  o.Demand,
		CreationTime:            o.CreationTime,
		CommittedCompletionTime: o.Deadline,
		LoadTime:                o.LoadTimeSec,
		UnloadTime:              o.UnloadTimeSec,
		DeliveryState:           int(o.State),
	}
}

func orderFromJSON(o OrderJSON) *domain.Order {
	return &domain.Order{
		ID:                 o.OrderID,
		PickupLocationID:   o.PickupID,
		DeliveryLocationID: o.DeliveryID,
		Demand:             o.Demand,
		CreationTime:       o.CreationTime,
		Deadline:           o.CommittedCompletionTime,
		LoadTimeSec:        o.LoadTime,
		UnloadTimeSec:      o.UnloadTime,
		State:              domain.OrderState(o.DeliveryState),
	}
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.InputIllFormedError(path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		return apperrors.InputIllFormedError(path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return apperrors.InputIllFormedError(path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return apperrors.InputIllFormedError(path, err)
	}
	return nil
}

// WriteDriverInputInfo writes driver_input_info.json.
func WriteDriverInputInfo(path string, drivers map[string]*domain.Driver) error {
	out := make([]DriverJSON, 0, len(drivers))
	for _, d := range drivers {
		rec := DriverJSON{
			ID:                          d.ID,
			OperationTime:               d.OperationTime,
			Capacity:                    d.Capacity,
			GPSID:                       d.GPSID,
			UpdateTime:                  d.GPSUpdateTime,
			CurrentLocationID:           d.CurrentLocationID,
			ArriveTimeAtCurrentLocation: d.ArriveTimeAtCurrentLocation,
			LeaveTimeAtCurrentLocation:  d.LeaveTimeAtCurrentLocation,
			CarryingOrders:              d.CarryingOrders,
		}
		if d.Destination != nil {
			nj := nodeToJSON(*d.Destination)
			rec.Destination = &nj
		}
		out = append(out, rec)
	}
	return writeJSON(path, out)
}

// WriteOrders writes unallocated_orders.json or ongoing_orders.json.
func WriteOrders(path string, orders map[string]*domain.Order) error {
	out := make([]OrderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToJSON(o))
	}
	return writeJSON(path, out)
}

// ReadOrders reads an order-array JSON file back into domain.Order values.
func ReadOrders(path string) ([]*domain.Order, error) {
	var recs []OrderJSON
	if err := readJSON(path, &recs); err != nil {
		return nil, err
	}
	out := make([]*domain.Order, len(recs))
	for i, r := range recs {
		out[i] = orderFromJSON(r)
	}
	return out, nil
}

// ReadDriverInputInfo reads driver_input_info.json back into domain.Driver values.
func ReadDriverInputInfo(path string) ([]*domain.Driver, error) {
	var recs []DriverJSON
	if err := readJSON(path, &recs); err != nil {
		return nil, err
	}
	out := make([]*domain.Driver, len(recs))
	for i, r := range recs {
		d := &domain.Driver{
			ID:                          r.ID,
			OperationTime:               r.OperationTime,
			Capacity:                    r.Capacity,
			GPSID:                       r.GPSID,
			GPSUpdateTime:               r.UpdateTime,
			CurrentLocationID:           r.CurrentLocationID,
			ArriveTimeAtCurrentLocation: r.ArriveTimeAtCurrentLocation,
			LeaveTimeAtCurrentLocation:  r.LeaveTimeAtCurrentLocation,
			CarryingOrders:              r.CarryingOrders,
		}
		if r.Destination != nil {
			n := nodeFromJSON(*r.Destination)
			d.Destination = &n
		}
		out[i] = d
	}
	return out, nil
}

// WriteDispatchResult writes destination.json and planned_route.json.
func WriteDispatchResult(destPath, routePath string, result *domain.DispatchResult) error {
	destOut := make(map[string]*NodeJSON, len(result.Destinations))
	for id, n := range result.Destinations {
		if n == nil {
			destOut[id] = nil
			continue
		}
		nj := nodeToJSON(*n)
		destOut[id] = &nj
	}
	if err := writeJSON(destPath, destOut); err != nil {
		return err
	}

	routeOut := make(map[string][]NodeJSON, len(result.PlannedRoute))
	for id, nodes := range result.PlannedRoute {
		list := make([]NodeJSON, len(nodes))
		for i, n := range nodes {
			list[i] = nodeToJSON(n)
		}
		routeOut[id] = list
	}
	return writeJSON(routePath, routeOut)
}

// CheckFreshness enforces spec.md §6's mtime check: the file's mtime
// must lie strictly between invocationStart and the current wallclock.
func CheckFreshness(path string, invocationStart time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.InputIllFormedError(path, err)
	}
	mtime := info.ModTime()
	now := time.Now()
	if !mtime.After(invocationStart) || !mtime.Before(now) {
		return apperrors.InputIllFormedError(path, fmt.Errorf("stale output file: mtime %v not within (%v, %v)", mtime, invocationStart, now))
	}
	return nil
}

// ReadDispatchResult reads destination.json and planned_route.json,
// enforcing the freshness check on both before parsing.
func ReadDispatchResult(destPath, routePath string, invocationStart time.Time) (*domain.DispatchResult, error) {
	if err := CheckFreshness(destPath, invocationStart); err != nil {
		return nil, err
	}
	if err := CheckFreshness(routePath, invocationStart); err != nil {
		return nil, err
	}

	var destIn map[string]*NodeJSON
	if err := readJSON(destPath, &destIn); err != nil {
		return nil, err
	}
	var routeIn map[string][]NodeJSON
	if err := readJSON(routePath, &routeIn); err != nil {
		return nil, err
	}

	result := domain.NewDispatchResult()
	for id, n := range destIn {
		if n == nil {
			result.Destinations[id] = nil
			continue
		}
		node := nodeFromJSON(*n)
		result.Destinations[id] = &node
	}
	for id, nodes := range routeIn {
		list := make([]domain.Node, len(nodes))
		for i, n := range nodes {
			list[i] = nodeFromJSON(n)
		}
		result.PlannedRoute[id] = list
	}
	return result, nil
}

// CheckSuccess requires stdout to contain the configured success flag
// (spec.md §6); its absence is fatal.
func CheckSuccess(stdout, successFlag string) error {
	if !strings.Contains(stdout, successFlag) {
		return apperrors.PolicyCrashedError(fmt.Sprintf("stdout did not contain success flag %q", successFlag))
	}
	return nil
}

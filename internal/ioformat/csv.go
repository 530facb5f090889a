// Package ioformat implements the two external interfaces of spec.md
// §6: static CSV inputs (customers, restaurants, routes, driver,
// orders) and the JSON process boundary used to invoke an external
// dispatcher binary.
//
// Kept on the standard library deliberately: spec.md §6 fixes these
// wire formats bit-exactly for interop with an external process, and
// no example in the corpus reaches for a third-party CSV or ad-hoc JSON
// library for a boundary like this one.
package ioformat

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/YJFKD/Food-delivery-simulator/internal/apperrors"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// BaseHourOfDay is the simulation's t=0 reference: 06:00 local.
const BaseHourOfDay = 6

// ADayTimeSeconds is a full day, used to roll a deadline that falls
// before its creation time forward by one day.
const ADayTimeSeconds = 24 * 3600

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.InputIllFormedError(path, err)
	}
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	return r, f, nil
}

func readRows(path string) ([][]string, error) {
	r, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.InputIllFormedError(path, err)
	}
	return rows, nil
}

func parseFloat(path, field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, apperrors.InputIllFormedError(path, fmt.Errorf("field %s: %w", field, err))
	}
	return v, nil
}

func parseInt(path, field, s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, apperrors.InputIllFormedError(path, fmt.Errorf("field %s: %w", field, err))
	}
	return v, nil
}

// LoadCustomers parses customer_id, latitude, longitude rows, no header.
func LoadCustomers(path string) ([]domain.Location, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Location, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			return nil, apperrors.InputIllFormedError(path, fmt.Errorf("expected 3 columns, got %d", len(row)))
		}
		lat, err := parseFloat(path, "latitude", row[1])
		if err != nil {
			return nil, err
		}
		lng, err := parseFloat(path, "longitude", row[2])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.NewCustomer(row[0], lat, lng))
	}
	return out, nil
}

// LoadRestaurants parses restaurant_id, latitude, longitude,
// dispatch_radius, customer_radius, wait_time rows, no header.
func LoadRestaurants(path string) ([]domain.Location, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Location, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, apperrors.InputIllFormedError(path, fmt.Errorf("expected 6 columns, got %d", len(row)))
		}
		lat, err := parseFloat(path, "latitude", row[1])
		if err != nil {
			return nil, err
		}
		lng, err := parseFloat(path, "longitude", row[2])
		if err != nil {
			return nil, err
		}
		dispatchRadius, err := parseFloat(path, "dispatch_radius", row[3])
		if err != nil {
			return nil, err
		}
		customerRadius, err := parseFloat(path, "customer_radius", row[4])
		if err != nil {
			return nil, err
		}
		waitTime, err := parseFloat(path, "wait_time", row[5])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.NewRestaurant(row[0], lat, lng, dispatchRadius, customerRadius, waitTime))
	}
	return out, nil
}

// LoadRoutes parses route_code, start_location_id, end_location_id,
// distance, time rows, no header.
func LoadRoutes(path string) ([]travelmap.Record, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]travelmap.Record, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			return nil, apperrors.InputIllFormedError(path, fmt.Errorf("expected 5 columns, got %d", len(row)))
		}
		distance, err := parseFloat(path, "distance", row[3])
		if err != nil {
			return nil, err
		}
		t, err := parseInt(path, "time", row[4])
		if err != nil {
			return nil, err
		}
		out = append(out, travelmap.Record{Start: row[1], End: row[2], Distance: distance, Time: t})
	}
	return out, nil
}

// LoadDrivers parses car_num, capacity, operation_time, gps_id rows, no
// header. Drivers start parked at startLocationID with no carried
// orders and no committed destination.
func LoadDrivers(path, startLocationID string) ([]*domain.Driver, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Driver, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			return nil, apperrors.InputIllFormedError(path, fmt.Errorf("expected 4 columns, got %d", len(row)))
		}
		capacity, err := parseInt(path, "capacity", row[1])
		if err != nil {
			return nil, err
		}
		opTime, err := parseInt(path, "operation_time", row[2])
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.Driver{
			ID:                row[0],
			Capacity:          int(capacity),
			OperationTime:     opTime,
			GPSID:             row[3],
			CurrentLocationID: startLocationID,
		})
	}
	return out, nil
}

// ParseClockTime parses an "HH:MM:SS" value into seconds-since-midnight.
func ParseClockTime(path, field, s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, apperrors.InputIllFormedError(path, fmt.Errorf("field %s: expected HH:MM:SS, got %q", field, s))
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, apperrors.InputIllFormedError(path, fmt.Errorf("field %s: expected HH:MM:SS, got %q", field, s))
	}
	return int64(h*3600 + m*60 + sec), nil
}

// NormalizeTimes converts creation/deadline clock-of-day strings into
// seconds since the simulation's base time (06:00 local), rolling the
// deadline forward by a day if it would otherwise precede creation.
func NormalizeTimes(path, creationHMS, deadlineHMS string) (creation, deadline int64, err error) {
	c, err := ParseClockTime(path, "creation_time", creationHMS)
	if err != nil {
		return 0, 0, err
	}
	d, err := ParseClockTime(path, "committed_completion_time", deadlineHMS)
	if err != nil {
		return 0, 0, err
	}
	creation = c - BaseHourOfDay*3600
	deadline = d - BaseHourOfDay*3600
	if deadline < creation {
		deadline += ADayTimeSeconds
	}
	return creation, deadline, nil
}

// LoadOrders parses order_id, pickup_id, delivery_id, demand,
// creation_time, committed_completion_time, load_time, unload_time
// rows, no header. Every order starts at StateInitialization.
func LoadOrders(path string) ([]*domain.Order, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		if len(row) < 8 {
			return nil, apperrors.InputIllFormedError(path, fmt.Errorf("expected 8 columns, got %d", len(row)))
		}
		demand, err := parseInt(path, "demand", row[3])
		if err != nil {
			return nil, err
		}
		creation, deadline, err := NormalizeTimes(path, row[4], row[5])
		if err != nil {
			return nil, err
		}
		loadTime, err := parseInt(path, "load_time", row[6])
		if err != nil {
			return nil, err
		}
		unloadTime, err := parseInt(path, "unload_time", row[7])
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.Order{
			ID:                 row[0],
			PickupLocationID:   row[1],
			DeliveryLocationID: row[2],
			Demand:             int(demand),
			CreationTime:       creation,
			Deadline:           deadline,
			LoadTimeSec:        loadTime,
			UnloadTimeSec:      unloadTime,
			State:              domain.StateInitialization,
		})
	}
	return out, nil
}

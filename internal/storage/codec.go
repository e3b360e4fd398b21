package storage

import (
	"encoding/json"
	"errors"

	"volition/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeGraphSpec(spec model.GraphSpec) ([]byte, error) {
	return json.Marshal(spec)
}

func DecodeGraphSpec(data []byte) (model.GraphSpec, error) {
	var spec model.GraphSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return model.GraphSpec{}, err
	}
	if err := checkVersion(spec.VersionedRecord); err != nil {
		return model.GraphSpec{}, err
	}
	return spec, nil
}

func EncodeDecisions(records []model.DecisionRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeDecisions(data []byte) ([]model.DecisionRecord, error) {
	var records []model.DecisionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := checkVersion(record.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

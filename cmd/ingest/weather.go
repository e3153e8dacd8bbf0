package main

import "github.com/tuannm99/novaingest/internal/record"

// weatherRequest builds a fixed sample batch:
//
//   - ts: timestamp column (milliseconds)
//   - collector: tag column
//   - temperature: float32 field
//   - humidity: int32 field
func weatherRequest() (*record.InsertRequest, error) {
	// fixed timestamps so reruns overwrite instead of piling up
	ts := record.TimestampMillisecondValues{
		1686109527000,
		1686023127000,
		1685936727000,
		1686109527000,
		1686023127000,
		1685936727000,
	}
	collectors := record.StringValues{"c1", "c1", "c1", "c2", "c2", "c2"}
	temp := record.Float32Values{26.4, 29.3, 31.8, 20.4, 18.0, 19.2}
	humidity := record.Int32Values{15, 20, 13, 67, 74, 81}

	r, err := record.NewInsertRequestBuilder("weather_demo", uint32(len(ts)))
	if err != nil {
		return nil, err
	}

	tsCol, err := record.NewTimestampColumn("ts", ts)
	if err != nil {
		return nil, err
	}
	collectorCol, err := record.NewTagColumn("collector", collectors, nil)
	if err != nil {
		return nil, err
	}
	tempCol, err := record.NewFieldColumn("temperature", temp, nil)
	if err != nil {
		return nil, err
	}
	humidityCol, err := record.NewFieldColumn("humidity", humidity, nil)
	if err != nil {
		return nil, err
	}

	for _, c := range []*record.Column{tsCol, collectorCol, tempCol, humidityCol} {
		if err := r.AddColumn(c); err != nil {
			return nil, err
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

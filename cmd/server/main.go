package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"image"
	"image/png"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vnovak404/worldgen"
)

var (
	addr      = ":3333"
	staticDir = "static"
)

func init() {
	flag.StringVar(&addr, "addr", addr, "listen address")
	flag.StringVar(&staticDir, "static", staticDir, "front-end directory to serve")
}

// generateRequest mirrors the front-end sliders; every field is optional
// and falls back to the default parameters.
type generateRequest struct {
	Seed                *uint64  `json:"seed"`
	Width               *int     `json:"width"`
	Height              *int     `json:"height"`
	NumMacroplates      *int     `json:"num_macroplates"`
	NumMicroplates      *int     `json:"num_microplates"`
	ContinentalFraction *float64 `json:"continental_fraction"`
	BoundaryNoise       *float64 `json:"boundary_noise"`
	BlurSigma           *float64 `json:"blur_sigma"`
	MountainScale       *float64 `json:"mountain_scale"`
	TrenchScale         *float64 `json:"trench_scale"`
	MountainWidth       *float64 `json:"mountain_width"`
	CoastAmp            *float64 `json:"coast_amp"`
	InteriorAmp         *float64 `json:"interior_amp"`
	DetailAmp           *float64 `json:"detail_amp"`
	ShelfWidth          *float64 `json:"shelf_width"`
	RidgeHeight         *float64 `json:"ridge_height"`
	RiftDepth           *float64 `json:"rift_depth"`
	RainfallScale       *float64 `json:"rainfall_scale"`
	RiverThreshold      *float64 `json:"river_threshold"`
}

func (req *generateRequest) apply() (uint64, *worldgen.Params) {
	seed := uint64(42)
	if req.Seed != nil {
		seed = *req.Seed
	}
	p := worldgen.NewParams()
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&p.Width, req.Width)
	setInt(&p.Height, req.Height)
	setInt(&p.NumMacroplates, req.NumMacroplates)
	setInt(&p.NumMicroplates, req.NumMicroplates)
	setF(&p.ContinentalFraction, req.ContinentalFraction)
	setF(&p.BoundaryNoise, req.BoundaryNoise)
	setF(&p.BlurSigma, req.BlurSigma)
	setF(&p.MountainScale, req.MountainScale)
	setF(&p.TrenchScale, req.TrenchScale)
	setF(&p.MountainWidth, req.MountainWidth)
	setF(&p.CoastAmp, req.CoastAmp)
	setF(&p.InteriorAmp, req.InteriorAmp)
	setF(&p.DetailAmp, req.DetailAmp)
	setF(&p.ShelfWidth, req.ShelfWidth)
	setF(&p.RidgeHeight, req.RidgeHeight)
	setF(&p.RiftDepth, req.RiftDepth)
	setF(&p.RainfallScale, req.RainfallScale)
	setF(&p.RiverThreshold, req.RiverThreshold)
	return seed, p
}

type layerJSON struct {
	Name    string `json:"name"`
	DataURL string `json:"data_url"`
}

type timingJSON struct {
	Name string  `json:"name"`
	Ms   float64 `json:"ms"`
}

type generateResponse struct {
	Layers  []layerJSON  `json:"layers"`
	Timings []timingJSON `json:"timings"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Partial bool         `json:"partial,omitempty"`
}

func encodePNG(rgba []byte, w, h int) (string, error) {
	img := &image.RGBA{
		Pix:    rgba,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func buildResponse(m *worldgen.Map, timings []worldgen.Timing, partial bool) (*generateResponse, error) {
	resp := &generateResponse{
		Width:   m.W,
		Height:  m.H,
		Partial: partial,
	}
	for _, layer := range m.Layers() {
		url, err := encodePNG(layer.RGBA, m.W, m.H)
		if err != nil {
			return nil, err
		}
		resp.Layers = append(resp.Layers, layerJSON{Name: layer.Name, DataURL: url})
	}
	for _, t := range timings {
		resp.Timings = append(resp.Timings, timingJSON{Name: t.Name, Ms: t.Ms})
	}
	return resp, nil
}

// generateHandler runs the full pipeline in one shot.
func generateHandler(res http.ResponseWriter, req *http.Request) {
	var greq generateRequest
	if err := json.NewDecoder(req.Body).Decode(&greq); err != nil {
		http.Error(res, err.Error(), http.StatusBadRequest)
		return
	}
	seed, params := greq.apply()

	m, timings, err := worldgen.Generate(req.Context(), seed, params)
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	resp, err := buildResponse(m, timings, false)
	if err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(resp)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// liveHandler streams the two-phase generation over a websocket: a partial
// frame as soon as the base pass finishes, then the full frame with rivers.
func liveHandler(res http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(res, req, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	var greq generateRequest
	if err := conn.ReadJSON(&greq); err != nil {
		log.Println("read:", err)
		return
	}
	seed, params := greq.apply()

	m, err := worldgen.NewMap(seed, params)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	timings, err := m.GenerateBase(req.Context())
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	resp, err := buildResponse(m, timings, true)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	if err := conn.WriteJSON(resp); err != nil {
		return
	}

	hydro, err := m.GenerateRivers(req.Context())
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	total := timings[len(timings)-1]
	timings = append(timings[:len(timings)-1], hydro,
		worldgen.Timing{Name: "TOTAL", Ms: total.Ms + hydro.Ms})

	resp, err = buildResponse(m, timings, false)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	conn.WriteJSON(resp)
}

func main() {
	flag.Parse()

	router := mux.NewRouter()
	router.HandleFunc("/api/generate", generateHandler).Methods("POST")
	router.HandleFunc("/api/live", liveHandler)
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	log.Println("worldgen server at", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}

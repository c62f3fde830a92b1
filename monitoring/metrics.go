package monitoring

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric 指标
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Help      string            `json:"help,omitempty"`
}

// histogram 直方图累计值
type histogram struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

// MetricsCollector 指标收集器，按名称+标签保存每条序列的最新值
type MetricsCollector struct {
	metrics     map[string]*Metric
	histograms  map[string]*histogram
	help        map[string]string
	metricsLock sync.RWMutex

	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:    make(map[string]*Metric),
		histograms: make(map[string]*histogram),
		help:       make(map[string]string),
		startTime:  time.Now(),
	}
}

// SetHelp 设置指标说明
func (mc *MetricsCollector) SetHelp(name, help string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()
	mc.help[name] = help
}

// IncrCounter 增加计数器
func (mc *MetricsCollector) IncrCounter(name string, value float64, labels map[string]string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	key := seriesKey(name, labels)
	metric, ok := mc.metrics[key]
	if !ok {
		metric = &Metric{Name: name, Type: MetricTypeCounter, Labels: copyLabels(labels)}
		mc.metrics[key] = metric
	}
	metric.Value += value
	metric.Timestamp = time.Now()
}

// SetGauge 设置仪表
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	mc.metrics[seriesKey(name, labels)] = &Metric{
		Name:      name,
		Type:      MetricTypeGauge,
		Value:     value,
		Labels:    copyLabels(labels),
		Timestamp: time.Now(),
	}
}

// RecordHistogram 记录直方图
func (mc *MetricsCollector) RecordHistogram(name string, value float64, buckets []float64) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	h, ok := mc.histograms[name]
	if !ok {
		h = &histogram{
			buckets: append([]float64(nil), buckets...),
			counts:  make([]uint64, len(buckets)),
		}
		sort.Float64s(h.buckets)
		mc.histograms[name] = h
	}
	for i, upper := range h.buckets {
		if value <= upper {
			h.counts[i]++
		}
	}
	h.sum += value
	h.count++
}

// GetMetric 获取指标
func (mc *MetricsCollector) GetMetric(name string, labels map[string]string) (Metric, error) {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	metric, ok := mc.metrics[seriesKey(name, labels)]
	if !ok {
		return Metric{}, fmt.Errorf("metric %s not found", name)
	}
	return *metric, nil
}

// GetAllMetrics 获取所有指标，按序列排序
func (mc *MetricsCollector) GetAllMetrics() []Metric {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	keys := make([]string, 0, len(mc.metrics))
	for key := range mc.metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Metric, 0, len(keys))
	for _, key := range keys {
		result = append(result, *mc.metrics[key])
	}
	return result
}

// CollectSystemMetrics 收集内存和协程指标
func (mc *MetricsCollector) CollectSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mc.SetGauge("memory_heap_alloc_bytes", float64(m.HeapAlloc), nil)
	mc.SetGauge("memory_gc_count", float64(m.NumGC), nil)
	mc.SetGauge("system_goroutines", float64(runtime.NumGoroutine()), nil)
	mc.SetGauge("uptime_seconds", mc.GetUptime().Seconds(), nil)
}

// ExportPrometheus 导出Prometheus文本格式
func (mc *MetricsCollector) ExportPrometheus() string {
	var b strings.Builder

	metrics := mc.GetAllMetrics()

	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	written := make(map[string]bool)
	for _, metric := range metrics {
		if !written[metric.Name] {
			mc.writeHeader(&b, metric.Name, metric.Type)
			written[metric.Name] = true
		}
		fmt.Fprintf(&b, "%s%s %s\n", metric.Name, formatLabels(metric.Labels), formatValue(metric.Value))
	}

	names := make([]string, 0, len(mc.histograms))
	for name := range mc.histograms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h := mc.histograms[name]
		mc.writeHeader(&b, name, MetricTypeHistogram)
		for i, upper := range h.buckets {
			fmt.Fprintf(&b, "%s_bucket{le=\"%s\"} %d\n", name, formatValue(upper), h.counts[i])
		}
		fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", name, h.count)
		fmt.Fprintf(&b, "%s_sum %s\n", name, formatValue(h.sum))
		fmt.Fprintf(&b, "%s_count %d\n", name, h.count)
	}

	return b.String()
}

func (mc *MetricsCollector) writeHeader(b *strings.Builder, name string, metricType MetricType) {
	help := mc.help[name]
	if help == "" {
		help = fmt.Sprintf("Metric %s", name)
	}
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, metricType)
}

// ExportJSON 导出JSON格式
func (mc *MetricsCollector) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(mc.GetAllMetrics(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetUptime 获取运行时间
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

func seriesKey(name string, labels map[string]string) string {
	return name + formatLabels(labels)
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, k, labels[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

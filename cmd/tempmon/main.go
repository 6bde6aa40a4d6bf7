package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/tempair.go/pkg/publish"
	"github.com/robotalks/tempair.go/pkg/publish/mqtt"
)

var (
	mqttURL  = "mqtt://localhost:1883/tempair/"
	encoding = "json"
)

func init() {
	if val := os.Getenv("TEMPAIR_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&encoding, "encoding", encoding, "Payload encoding: json, proto.")
}

func decode(payload []byte) (string, error) {
	if encoding == publish.Proto.Name() {
		var r publish.Reading
		if err := proto.Unmarshal(payload, &r); err != nil {
			return "", err
		}
		return r.String(), nil
	}
	var ev publish.Event
	if err := sonic.Unmarshal(payload, &ev); err != nil {
		return "", err
	}
	return ev.String(), nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	client, err := mqtt.NewClientFromURL(mqttURL, "")
	if err != nil {
		log.Fatalln(err)
	}
	client.Sub("+/+", func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/status") || strings.HasSuffix(topic, "/stats") {
			return
		}
		msg, err := decode(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, msg)
	})
	client.Sub("+/status", func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, string(payload))
	})
	client.Sub("+/stats", func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, string(payload))
	})

	if token := client.Client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer client.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
}

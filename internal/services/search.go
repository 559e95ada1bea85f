package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"mobilenest_back_end/internal/models"
)

const ordersIndex = "orders"

// ElasticOrderIndex indexe les commandes dans Elasticsearch pour la recherche admin.
type ElasticOrderIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticOrderIndex(client *elasticsearch.Client) *ElasticOrderIndex {
	return &ElasticOrderIndex{client: client, index: ordersIndex}
}

// orderDocument est la forme indexée d'une commande.
type orderDocument struct {
	ID            uint     `json:"id_transaksi"`
	OrderNumber   string   `json:"no_transaksi"`
	UserID        uint     `json:"id_user"`
	Status        string   `json:"status_pesanan"`
	PaymentMethod string   `json:"metode_pembayaran,omitempty"`
	SenderName    string   `json:"nama_pengirim,omitempty"`
	Subtotal      int64    `json:"subtotal"`
	ShippingCost  int64    `json:"ongkir"`
	Total         int64    `json:"total_harga"`
	Products      []string `json:"produk,omitempty"`
	Recipient     string   `json:"nama_penerima,omitempty"`
	City          string   `json:"kota,omitempty"`
	CreatedAt     string   `json:"tanggal_transaksi"`
}

func newOrderDocument(o models.Transaction) orderDocument {
	doc := orderDocument{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		SenderName:    o.SenderName,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, item := range o.Items {
		doc.Products = append(doc.Products, item.ProductName)
	}
	if o.Shipping != nil {
		doc.Recipient = o.Shipping.RecipientName
		doc.City = o.Shipping.City
	}
	return doc
}

// IndexOrder crée ou remplace le document de la commande. Une mise à jour partielle
// (sans lignes ni envoi) n'efface pas les champs déjà indexés.
func (e *ElasticOrderIndex) IndexOrder(ctx context.Context, order models.Transaction) error {
	doc := newOrderDocument(order)
	body, err := json.Marshal(map[string]interface{}{"doc": doc, "doc_as_upsert": true})
	if err != nil {
		return err
	}

	req := esapi.UpdateRequest{
		Index:      e.index,
		DocumentID: strconv.FormatUint(uint64(order.ID), 10),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("Elastic a renvoyé une erreur pour %s: %s", order.OrderNumber, res.String())
	}
	return nil
}

// SearchOrders cherche par numéro de commande, nom d'expéditeur, destinataire ou produit.
func (e *ElasticOrderIndex) SearchOrders(ctx context.Context, query string) ([]map[string]interface{}, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": 50,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"no_transaksi^3", "nama_pengirim", "nama_penerima", "produk", "kota", "status_pesanan"},
			},
		},
		"sort": []interface{}{map[string]interface{}{"tanggal_transaksi": "desc"}},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("recherche Elastic: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}
	if r.Hits.Hits == nil {
		return nil, errors.New("réponse Elastic invalide (pas de hits)")
	}

	results := make([]map[string]interface{}, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}

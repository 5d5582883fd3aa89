package commands

import (
	"fmt"
	"strconv"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

// The provider's metadata is a flat bag of scalar key/value pairs with a hard
// key budget, so cart line items are flattened to item_<n>_{id,name,quantity,
// price} quadruples. Encode and decode live together here so the convention
// has exactly one home.

const (
	metadataKeyBudget = 50
	keysPerItem       = 4

	metaKeyCartID          = "cart_id"
	metaKeyItemCount       = "item_count"
	metaKeyUserID          = "user_id"
	metaKeySessionID       = "session_id"
	metaKeyBundleProductID = "bundle_product_id"
)

// cart_id + item_count + owner + bundle_product_id
const reservedKeys = 4

// MaxEncodableItems caps practical cart size for checkout.
const MaxEncodableItems = (metadataKeyBudget - reservedKeys) / keysPerItem

var ErrCartTooLarge = errs.Newf("cart exceeds the %d distinct items a checkout session can carry", MaxEncodableItems)

// CheckoutMetadata is the decoded form used by the completion handler.
type CheckoutMetadata struct {
	CartID          *uuid.UUID
	Owner           cart.Owner
	BundleProductID string
	Items           []order.LineItem
}

func encodeCartMetadata(cartID uuid.UUID, owner cart.Owner, items []shared.CartItemRecord, bundleProductID string, extra map[string]string) (map[string]string, error) {
	if len(items) > MaxEncodableItems {
		return nil, ErrCartTooLarge
	}

	md := make(map[string]string, reservedKeys+len(items)*keysPerItem+len(extra))
	for k, v := range extra {
		md[k] = v
	}

	md[metaKeyCartID] = cartID.String()
	md[metaKeyItemCount] = strconv.Itoa(len(items))
	if userID, ok := owner.UserID(); ok {
		md[metaKeyUserID] = userID.String()
	} else if sessionID, ok := owner.SessionID(); ok {
		md[metaKeySessionID] = sessionID
	}
	if bundleProductID != "" {
		md[metaKeyBundleProductID] = bundleProductID
	}

	for n, item := range items {
		prefix := fmt.Sprintf("item_%d_", n)
		md[prefix+"id"] = item.ProductID.String()
		md[prefix+"name"] = item.ProductName
		md[prefix+"quantity"] = strconv.FormatInt(int64(item.Quantity), 10)
		md[prefix+"price"] = strconv.FormatInt(item.PriceCents, 10)
	}

	if len(md) > metadataKeyBudget {
		return nil, ErrCartTooLarge
	}
	return md, nil
}

// decodeCartMetadata tolerates partial payloads: a session created outside
// this flow still completes, it just carries no cart to clear or decrement.
func decodeCartMetadata(md map[string]string) CheckoutMetadata {
	var decoded CheckoutMetadata
	if md == nil {
		return decoded
	}

	if raw, ok := md[metaKeyCartID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			decoded.CartID = &id
		}
	}
	if raw, ok := md[metaKeyUserID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			decoded.Owner = cart.UserOwner(id)
		}
	} else if raw, ok := md[metaKeySessionID]; ok && raw != "" {
		decoded.Owner = cart.GuestOwner(raw)
	}
	decoded.BundleProductID = md[metaKeyBundleProductID]

	count, err := strconv.Atoi(md[metaKeyItemCount])
	if err != nil || count <= 0 {
		return decoded
	}
	// item_count is provider-echoed data; never loop past what the encoder
	// could have written.
	if count > MaxEncodableItems {
		count = MaxEncodableItems
	}

	for n := 0; n < count; n++ {
		prefix := fmt.Sprintf("item_%d_", n)
		productID, err := uuid.Parse(md[prefix+"id"])
		if err != nil {
			continue
		}
		quantity, err := strconv.ParseInt(md[prefix+"quantity"], 10, 32)
		if err != nil || quantity <= 0 {
			continue
		}
		price, err := strconv.ParseInt(md[prefix+"price"], 10, 64)
		if err != nil {
			continue
		}
		decoded.Items = append(decoded.Items, order.LineItem{
			ProductID:  productID,
			Name:       md[prefix+"name"],
			Quantity:   int32(quantity),
			PriceCents: price,
		})
	}
	return decoded
}
